// Package googleplaces provides a client for the Google Business Profile reviews API.
//
// This package implements the reviewfeeds.ReviewFeed interface for collecting
// published reviews from a business's Google listing. Reviews are paginated
// with page tokens and carry star ratings as enum strings.
package googleplaces

// ReviewsResponse represents the response from the reviews list endpoint.
type ReviewsResponse struct {
	// Reviews contains the list of reviews for the current page.
	Reviews []Review `json:"reviews"`

	// TotalReviewCount is the total number of reviews on the listing.
	TotalReviewCount int `json:"totalReviewCount"`

	// AverageRating is the listing's average star rating.
	AverageRating float64 `json:"averageRating"`

	// NextPageToken is the token for fetching the next page of reviews.
	// Empty when there are no more pages.
	NextPageToken string `json:"nextPageToken"`
}

// Review represents a single review in the API response.
type Review struct {
	// ReviewID is the Google-assigned review identifier.
	ReviewID string `json:"reviewId"`

	// Reviewer contains the reviewer's public profile information.
	Reviewer Reviewer `json:"reviewer"`

	// StarRating is the rating as an enum string: "ONE" through "FIVE",
	// or "STAR_RATING_UNSPECIFIED".
	StarRating string `json:"starRating"`

	// Comment is the review body. May be empty for rating-only reviews.
	Comment string `json:"comment"`

	// CreateTime is when the review was posted, in RFC 3339 format.
	CreateTime string `json:"createTime"`

	// UpdateTime is when the review was last edited, in RFC 3339 format.
	UpdateTime string `json:"updateTime"`
}

// Reviewer contains the public profile of the review author.
type Reviewer struct {
	// DisplayName is the name Google displays for the reviewer,
	// often abbreviated (e.g., "John S.").
	DisplayName string `json:"displayName"`

	// ProfilePhotoURL is the reviewer's profile photo URL.
	ProfilePhotoURL string `json:"profilePhotoUrl,omitempty"`

	// IsAnonymous indicates that the reviewer chose to stay anonymous.
	IsAnonymous bool `json:"isAnonymous,omitempty"`
}

// ErrorResponse represents an error response from the API.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the error details Google returns.
type ErrorBody struct {
	// Code is the numeric status code.
	Code int `json:"code"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Status is the canonical status string (e.g., "NOT_FOUND").
	Status string `json:"status"`
}
