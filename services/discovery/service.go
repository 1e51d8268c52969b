package discovery

import (
	"context"
	"log"
	"time"

	"github.com/sourcegraph/conc"

	"cinelog/models"
	"cinelog/services/metadata"
)

// maxSectionSize caps how many candidates a section carries. Collaborator
// relevance order is preserved; no re-ranking happens here.
const maxSectionSize = 20

type metadataClient interface {
	Discover(ctx context.Context, filter metadata.Filter) ([]models.MovieSummary, error)
}

var _ metadataClient = (*metadata.Client)(nil)

// Section is one rendered row of the discovery page: the descriptor chosen
// for the day plus its candidates.
type Section struct {
	Descriptor Descriptor            `json:"descriptor"`
	Movies     []models.MovieSummary `json:"movies"`
}

// Service computes the day's selections and fetches candidates for them.
type Service struct {
	client metadataClient
}

// NewService creates a discovery service over the given metadata client.
func NewService(client metadataClient) *Service {
	return &Service{client: client}
}

// Sections selects one descriptor per rotating family for the given day
// and fetches all candidate lists concurrently. A failing section degrades
// to an empty candidate list; it never fails the page.
func (s *Service) Sections(ctx context.Context, day time.Time) ([]Section, error) {
	type familySelection struct {
		table  []Descriptor
		offset int
	}
	families := []familySelection{
		{DirectorTable, OffsetDirector},
		{EraCountryTable, OffsetEraCountry},
		{GenreTable, OffsetGenre},
		{CountryTable, OffsetCountry},
	}

	sections := make([]Section, len(families))
	for i, fam := range families {
		descriptor, err := SelectForDay(day, fam.table, fam.offset)
		if err != nil {
			return nil, err
		}
		sections[i].Descriptor = descriptor
	}

	// Fan out one fetch per section. Each slot is written only by its own
	// goroutine, so no locking is needed on the results.
	var wg conc.WaitGroup
	for i := range sections {
		i := i
		wg.Go(func() {
			sections[i].Movies = s.Candidates(ctx, sections[i].Descriptor)
		})
	}
	wg.Wait()

	return sections, nil
}

// Candidates fetches up to maxSectionSize movies for a descriptor. On
// collaborator error it logs and returns an empty list so the caller can
// render a partial page.
func (s *Service) Candidates(ctx context.Context, descriptor Descriptor) []models.MovieSummary {
	movies, err := s.client.Discover(ctx, descriptor.Filter())
	if err != nil {
		log.Printf("[discovery] fetch failed for %s: %v", descriptor.ID, err)
		return []models.MovieSummary{}
	}

	// The service usually honors the vote floor in the query; keep the
	// client-side filter as a backstop for providers that ignore it.
	if descriptor.MinVoteAverage > 0 {
		filtered := make([]models.MovieSummary, 0, len(movies))
		for _, m := range movies {
			if m.VoteAverage >= descriptor.MinVoteAverage {
				filtered = append(filtered, m)
			}
		}
		movies = filtered
	}

	if len(movies) > maxSectionSize {
		movies = movies[:maxSectionSize]
	}
	return movies
}

// MoodPick returns today's pick for a mood: the mood's candidates are
// fetched and the day-and-mood seed selects one of them.
func (s *Service) MoodPick(ctx context.Context, day time.Time, moodID string) (*models.MovieSummary, error) {
	var mood *Descriptor
	for i := range MoodTable {
		if MoodTable[i].ID == moodID {
			mood = &MoodTable[i]
			break
		}
	}
	if mood == nil {
		return nil, ErrUnknownMood
	}

	candidates := s.Candidates(ctx, *mood)
	if len(candidates) == 0 {
		return nil, nil
	}

	idx, err := SelectMoodForDay(day, moodID, len(candidates))
	if err != nil {
		return nil, err
	}
	pick := candidates[idx]
	return &pick, nil
}
