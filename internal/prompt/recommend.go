package prompt

import (
	"fmt"
	"strings"

	"github.com/kapu/cinerec-go/internal/domain"
)

// RecommendationPromptVars holds variables for the recommendation prompt
type RecommendationPromptVars struct {
	Titles      []string
	Underrated  bool
	ContentType domain.ContentType
}

const movieExampleBlock = `1. The Shawshank Redemption (1994) [English] - A powerful story of hope and friendship
2. 3 Idiots (2009) [Hindi] - A heartwarming comedy about friendship and education
3. Parasite (2019) [Korean] - A masterful social satire with perfect pacing
4. Pather Panchali (1955) [Bengali] - A poetic portrayal of rural Indian life
5. Spirited Away (2001) [Japanese] - A magical animated journey through a spirit world
6. The Dark Knight (2008) [English] - Groundbreaking superhero film with an iconic villain
7. Dilwale Dulhania Le Jayenge (1995) [Hindi] - The ultimate Bollywood romance
8. Amélie (2001) [French] - A whimsical tale of a shy waitress in Paris`

const seriesExampleBlock = `1. Breaking Bad (2008) [English] - A chemistry teacher's descent into the drug trade
2. Dark (2017) [German] - A time-travel mystery spanning four generations
3. Squid Game (2021) [Korean] - A deadly survival game with sharp class commentary
4. Sacred Games (2018) [Hindi] - A sprawling Mumbai crime saga
5. Money Heist (2017) [Spanish] - A meticulously planned heist told from the inside
6. Attack on Titan (2013) [Japanese] - Humanity's fight for survival behind giant walls
7. Chernobyl (2019) [English] - A harrowing dramatization of the 1986 disaster
8. Borgen (2010) [Danish] - A political drama about power and compromise`

// BuildRecommendationPrompt builds the generation prompt for a validated
// request. Pure function of its inputs; the strict format grammar here is
// what the parser's strict tier expects back.
func BuildRecommendationPrompt(vars RecommendationPromptVars) string {
	display := vars.ContentType.Display()
	single := vars.ContentType.Single()
	sibling := vars.ContentType.Sibling()

	underratedNote := ""
	if vars.Underrated {
		underratedNote = fmt.Sprintf(`
IMPORTANT: Focus on recommending underrated, hidden gem, or lesser-known %s that are often overlooked.
Prioritize %s that are critically acclaimed but may not have received widespread recognition.
`, display, display)
	}

	exampleBlock := movieExampleBlock
	if vars.ContentType == domain.ContentTypeSeries {
		exampleBlock = seriesExampleBlock
	}

	return fmt.Sprintf(`You are an expert %s recommendation system. Your ONLY TASK is to recommend EXACTLY 16 %s similar to the ones the user likes.
%s
CRITICAL INSTRUCTIONS - READ CAREFULLY:
1. You MUST provide EXACTLY 16 %s recommendations (NO %s ALLOWED)
2. Do NOT stop until you have listed all 16 %s
3. Do NOT include any other text before or after the list
4. Include %s from various languages and genres
5. For each %s, include the language in square brackets after the title
6. Make sure the first 8 recommendations are the most relevant
7. The remaining 8 can be slightly less relevant but still good matches

FORMAT REQUIREMENTS:
1. Each recommendation must be on a new line
2. Each line must start with a number followed by a dot (e.g., "1. ", "2. ", etc.)
3. Each recommendation must follow this pattern: "[Number]. [Title] ([Year]) [Language] - [Brief reason, one line]"

EXAMPLE OF THE EXPECTED FORMAT:
%s

User's favorite %s: %s

Now, please provide EXACTLY 16 %s recommendations following the format above.
IMPORTANT: Only include %s in your response, no %s allowed.`,
		display,
		display,
		underratedNote,
		display,
		strings.ToUpper(sibling),
		display,
		display,
		single,
		exampleBlock,
		display,
		strings.Join(vars.Titles, ", "),
		display,
		display,
		sibling,
	)
}
