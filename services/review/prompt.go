package review

import (
	"fmt"
	"strings"

	"cinelog/models"
)

// buildContextBlock embeds the known facts about the movie so the
// assistant never re-asks for them and keeps its questions on the user's
// subjective impression.
func buildContextBlock(movie models.SelectedMovie) string {
	var sb strings.Builder

	sb.WriteString("あなたは映画の感想を聞き出すインタビュアーです。\n")
	sb.WriteString("以下の映画について、ユーザーが観た感想を会話で引き出してください。\n\n")

	sb.WriteString("映画の情報:\n")
	sb.WriteString("- タイトル: " + movie.Title + "\n")
	if movie.OriginalTitle != "" && movie.OriginalTitle != movie.Title {
		sb.WriteString("- 原題: " + movie.OriginalTitle + "\n")
	}
	if len(movie.Genres) > 0 {
		sb.WriteString("- ジャンル: " + strings.Join(movie.Genres, "、") + "\n")
	}
	if len(movie.Directors) > 0 {
		sb.WriteString("- 監督: " + strings.Join(movie.Directors, "、") + "\n")
	}
	if len(movie.Cast) > 0 {
		sb.WriteString("- 出演: " + strings.Join(movie.Cast, "、") + "\n")
	}
	if movie.ReleaseDate != "" {
		sb.WriteString("- 公開日: " + movie.ReleaseDate + "\n")
	}
	if movie.VoteAverage > 0 {
		sb.WriteString(fmt.Sprintf("- 評価: %.1f\n", movie.VoteAverage))
	}
	if movie.Overview != "" {
		sb.WriteString("- あらすじ: " + movie.Overview + "\n")
	}

	sb.WriteString("\nルール:\n")
	sb.WriteString("- 上記の事実は既に知っているので、聞き返さないでください\n")
	sb.WriteString("- あらすじの説明ではなく、ユーザー自身の主観的な感想を質問してください\n")
	sb.WriteString("- 一度にひとつだけ、短く質問してください\n")

	return sb.String()
}

// buildSummaryPrompt asks for a short impression summary of the whole
// exchange, bounded to the review seed length.
func buildSummaryPrompt(movie models.SelectedMovie, transcript []models.ChatTurn) string {
	var sb strings.Builder

	sb.WriteString("以下は映画「" + movie.Title + "」についての会話です。\n\n")
	for _, turn := range transcript {
		label := "ユーザー"
		if turn.Role == models.RoleAssistant {
			label = "アシスタント"
		}
		sb.WriteString(label + ": " + turn.Text + "\n")
	}

	sb.WriteString(fmt.Sprintf("\nこの会話からユーザー本人の感想を%d文字以内でまとめてください。\n", summaryMaxRunes))
	sb.WriteString("「私は」などの主語は省略し、レビュー文としてそのまま使える文体にしてください。\n")
	sb.WriteString("まとめの文章だけを出力してください。\n")

	return sb.String()
}
