package planner

import (
	"fmt"

	"github.com/MikeSquared-Agency/voyager/internal/extract"
)

const cur = extract.CurrencySymbol

const budgetPrompt = `You are a travel budget expert for India. Calculate a detailed budget estimate with the following parameters:
- From: %[1]s
- To: %[2]s
- Duration: %[3]d days
- Number of travelers: %[4]d
- Transportation: %[5]s
- Accommodation: %[6]s

Please provide a comprehensive budget breakdown in ` + cur + ` (Indian Rupees) including:

1. **Transportation Costs**
   - Calculate distance from %[1]s to %[2]s
   - Provide costs for %[5]s
   - Include return journey costs
   - Add local transportation at destination

2. **Accommodation Costs**
   - %[6]s pricing for %[3]d nights
   - Per night and total costs

3. **Food & Dining**
   - Breakfast, lunch, dinner costs per day
   - Total for %[3]d days

4. **Activities & Sightseeing**
   - Entry fees for popular attractions in %[2]s
   - Activity costs

5. **Miscellaneous**
   - Shopping, tips, emergency funds

6. **TOTAL BUDGET SUMMARY**
   - Total estimated cost: ` + cur + `X
   - Cost per person: ` + cur + `Y
   - Daily average: ` + cur + `Z

Be realistic with Indian market prices in ` + cur + `. Provide specific cost ranges and explain your calculations.`

const tripPrompt = `You are an expert travel planner for India. Create a complete trip plan with the following parameters:
- From: %[1]s
- To: %[2]s
- Total budget: ` + cur + `%[3]d (Indian Rupees)
- Number of travelers: %[4]d
- Travel style: %[5]s
- Duration: %[6]d days

Please provide:
1. Travel route from %[1]s to %[2]s with distance and best transportation options
2. Detailed cost breakdown in ` + cur + ` including:
   - Transportation costs (based on distance from %[1]s to %[2]s)
   - Accommodation costs
   - Food expenses
   - Activity/sightseeing costs
   - Miscellaneous expenses
   - **TOTAL ESTIMATED COST**
3. 3-5 recommended hotels in %[2]s with price ranges in ` + cur + ` and ratings
4. 5-7 recommended restaurants in %[2]s with cuisine types and price ranges in ` + cur + `
5. Detailed day-by-day itinerary. Start each day with a heading of the form "## Day N" and put every activity on its own line with a time block (e.g., "9:00-11:00 AM: Visit Central Museum")

Make the itinerary %[7]s. Be specific with place names and realistic with Indian pricing in ` + cur + `.

IMPORTANT: At the end, provide a clear "## Trip Summary" section with:
- Total estimated cost: ` + cur + `X
- Cost per person: ` + cur + `Y
- Breakdown by category`

const musicPrompt = `You are a music curator specializing in travel playlists. Create personalized music recommendations for a journey with the following preference:
- Genre: %s

Please provide:
1. 3-4 curated playlists perfect for travel
2. For each playlist:
   - A catchy name
   - A brief description of the mood/vibe
   - 8-10 specific song recommendations with artist names
   - For each song, provide a YouTube Music search link in the format: https://music.youtube.com/search?q=SONG_NAME+ARTIST_NAME (replace spaces with +)

Make the recommendations diverse within the genre and perfect for different parts of a journey (starting the trip, scenic drives, relaxing moments, etc.).

Format each song as:
- **Song Name** by Artist Name - [Listen on YouTube Music](https://music.youtube.com/search?q=Song+Name+Artist+Name)`

func transportLabel(t Transportation) string {
	switch t {
	case TransportPublic:
		return "public transport (bus/train)"
	case TransportPersonal:
		return "personal vehicle (car/bike)"
	default:
		return "flight"
	}
}

func stayLabel(a Accommodation) string {
	switch a {
	case StayHostel:
		return "hostel/budget accommodation"
	case StayHotel:
		return "mid-range hotel"
	default:
		return "luxury hotel/resort"
	}
}

func paceLabel(s TravelStyle) string {
	if s == StyleRelaxing {
		return "relaxed with leisure time"
	}
	return "packed with exciting activities"
}

// BudgetPrompt builds the instruction for a budget estimate.
func BudgetPrompt(r BudgetRequest) string {
	return fmt.Sprintf(budgetPrompt,
		r.Origin, r.Destination, r.Days, r.Travelers,
		transportLabel(r.Transportation), stayLabel(r.Accommodation))
}

// TripPrompt builds the instruction for a trip plan. The model is asked to
// end with a "## Trip Summary" section, which the summary extractor looks for.
func TripPrompt(r TripRequest) string {
	return fmt.Sprintf(tripPrompt,
		r.Origin, r.Destination, r.Budget, r.Travelers,
		r.TravelStyle, r.Duration, paceLabel(r.TravelStyle))
}

// MusicPrompt builds the instruction for playlist recommendations.
func MusicPrompt(r MusicRequest) string {
	return fmt.Sprintf(musicPrompt, r.Genre)
}
