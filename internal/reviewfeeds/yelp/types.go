// Package yelp provides a client for the Yelp Fusion reviews API.
//
// This package implements the reviewfeeds.ReviewFeed interface for collecting
// published reviews from a business's Yelp listing. Reviews are paginated
// with limit/offset parameters and timestamps use Yelp's local datetime format.
package yelp

// ReviewsResponse represents the response from the business reviews endpoint.
type ReviewsResponse struct {
	// Reviews contains the list of reviews for the current page.
	Reviews []Review `json:"reviews"`

	// Total is the total number of reviews on the listing.
	Total int `json:"total"`

	// PossibleLanguages lists the languages reviews are available in.
	PossibleLanguages []string `json:"possible_languages,omitempty"`
}

// Review represents a single review in the Fusion API response.
type Review struct {
	// ID is the Yelp-assigned review identifier.
	ID string `json:"id"`

	// URL is the public URL of the review.
	URL string `json:"url,omitempty"`

	// Text is an excerpt of the review body.
	Text string `json:"text"`

	// Rating is the 1-5 star rating.
	Rating int `json:"rating"`

	// TimeCreated is when the review was posted, in
	// "2006-01-02 15:04:05" format.
	TimeCreated string `json:"time_created"`

	// User contains the reviewer's public profile information.
	User User `json:"user"`
}

// User contains the public profile of the review author.
type User struct {
	// ID is the Yelp user identifier.
	ID string `json:"id"`

	// Name is the name Yelp displays for the reviewer,
	// often abbreviated (e.g., "Sarah J.").
	Name string `json:"name"`

	// ProfileURL is the user's Yelp profile URL.
	ProfileURL string `json:"profile_url,omitempty"`

	// ImageURL is the user's profile image URL.
	ImageURL string `json:"image_url,omitempty"`
}

// ErrorResponse represents an error response from the Fusion API.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the error details Yelp returns.
type ErrorBody struct {
	// Code is the error code string (e.g., "BUSINESS_NOT_FOUND").
	Code string `json:"code"`

	// Description is the human-readable error message.
	Description string `json:"description"`
}
