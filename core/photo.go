package core

type (
	// PhotoUser is the attribution info the image source returns with
	// every photo.
	PhotoUser struct {
		Username     string `json:"username"`
		ProfileImage string `json:"profile_image"`
	}

	// ImageDetail is the normalized shape of a photo record from the
	// external image source, as consumed by the frontend.
	ImageDetail struct {
		ID            string    `json:"id"`
		Title         string    `json:"title"`
		Description   string    `json:"description"`
		ImageLargeURL string    `json:"image_large_url"`
		User          PhotoUser `json:"user"`
		Likes         int       `json:"likes"`
	}
)
