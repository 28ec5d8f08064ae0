package model

// CreateRelatedPostInput is the body accepted by the related post endpoints.
// Image is the legacy name of CoverImageURL and is only read when CoverImageURL is empty.
type CreateRelatedPostInput struct {
	Title         string `json:"title" validate:"required"`
	CoverImageURL string `json:"coverImageUrl" validate:"required,coverimage"`
	Image         string `json:"image,omitempty" validate:"-"`
}

// Normalize folds the legacy image field into CoverImageURL.
func (in CreateRelatedPostInput) Normalize() CreateRelatedPostInput {
	if in.CoverImageURL == "" && in.Image != "" {
		in.CoverImageURL = in.Image
	}
	in.Image = ""
	return in
}
