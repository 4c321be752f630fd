package generativeAI

import "fmt"

const (
	placeInfoSystemPrompt = "You are a travel assistant. Be brief and to the point."

	recommendationSystemPrompt = "You are a travel assistant. Suggest destinations " +
		"the user is likely to enjoy and explain each suggestion in one sentence."

	chatSystemPrompt = "You are a polite, concise and helpful travel assistant. " +
		"Be precise and give practical answers."

	normalizeQuerySystemPrompt = "You extract a short location search query from the " +
		"user's text. Return only the place/city/region/address name, no extra words, " +
		"at most 50 characters."
)

func placeInfoPrompt(latitude, longitude float64) string {
	return fmt.Sprintf(
		"Coordinates: latitude %v, longitude %v. Give a brief, interesting and useful "+
			"description for a tourist (under 100 words).", latitude, longitude)
}

func placeInfoWithAddressPrompt(address string, latitude, longitude float64) string {
	return fmt.Sprintf(
		"Here is data about a place. Use the address first, then the coordinates. "+
			"Write a brief, informative description for a tourist (under 100 words), "+
			"mentioning landmarks, the district/city and what makes the place interesting.\n\n"+
			"Address (OSM): %s\nCoordinates: latitude %v, longitude %v",
		address, latitude, longitude)
}

func recommendationPrompt(likedPlaces string) string {
	return fmt.Sprintf(
		"The user liked the following places: %s. Recommend where to travel next.",
		likedPlaces)
}

func preferencesSystemSuffix(likedPlaces string) string {
	return fmt.Sprintf(
		" Take the user's preferences into account (they like: %s) when choosing "+
			"what to emphasize: climate, activities, the character of the place.",
		likedPlaces)
}
