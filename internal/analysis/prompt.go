package analysis

import (
	"fmt"
	"strings"

	"github.com/swamp-dev/mindcare/internal/journal"
)

const systemPrompt = "You are a supportive journaling assistant. Always answer with a single JSON object and nothing else."

func classifyPrompt(text string) string {
	return fmt.Sprintf(`Analyze the following journal entry and provide:
1. A mood classification (%s)
2. A mood score from 1-10 (1 being very negative, 10 being very positive)
3. A brief personalized tip or suggestion (max 100 words)

Journal entry: %q

Respond in the following JSON format:
{
  "mood": "mood_classification",
  "score": mood_score_number,
  "tip": "personalized_tip_here"
}`, strings.Join(Moods, ", "), text)
}

func dayPrompt(in DayInput) string {
	return fmt.Sprintf(`Analyze a full day of journal entries and provide:
1. An overall mood for the day
2. An overall mood score (1-10)
3. A comprehensive daily summary and tip (max 150 words)

Morning entry: %q (Mood: %s, Score: %d)
Afternoon entry: %q (Mood: %s, Score: %d)
Evening entry: %q (Mood: %s, Score: %d)

Respond in the following JSON format:
{
  "overallMood": "mood_classification",
  "overallScore": average_score_number,
  "dailySummary": "comprehensive_daily_summary_and_tip"
}`,
		in.Texts.Morning, in.Morning.Mood, in.Morning.Score,
		in.Texts.Afternoon, in.Afternoon.Mood, in.Afternoon.Score,
		in.Texts.Evening, in.Evening.Mood, in.Evening.Score,
	)
}

func monthPrompt(entries []journal.Entry) string {
	var sb strings.Builder
	sb.WriteString("Analyze the following month of journal data and provide insights:\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "Date: %s, Overall Mood: %s, Score: %d\n",
			e.CreatedAt.Format("Mon Jan 02 2006"), e.OverallMood, e.OverallScore)
	}
	sb.WriteString(`
Please provide:
1. Overall behavior patterns observed
2. Mood trends and fluctuations
3. Personalized recommendations for improvement
4. Positive highlights from the month

Respond in JSON format:
{
  "monthlyInsights": "comprehensive_monthly_analysis_and_recommendations"
}`)
	return sb.String()
}
