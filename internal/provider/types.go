package provider

// Raw X API v2 response shapes. These never leave this package: the
// client maps them into domain types at the boundary so no downstream
// component sees provider payload shapes.

type userResponse struct {
	Data *struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Username    string `json:"username"`
		Description string `json:"description"`
	} `json:"data"`
	Errors []apiError `json:"errors"`
}

type tweetsResponse struct {
	Data []struct {
		ID               string `json:"id"`
		Text             string `json:"text"`
		CreatedAt        string `json:"created_at"`
		PublicMetrics    *struct {
			LikeCount       int `json:"like_count"`
			RetweetCount    int `json:"retweet_count"`
			ReplyCount      int `json:"reply_count"`
			ImpressionCount int `json:"impression_count"`
		} `json:"public_metrics"`
		ReferencedTweets []struct {
			Type string `json:"type"`
			ID   string `json:"id"`
		} `json:"referenced_tweets"`
		Attachments *struct {
			MediaKeys []string `json:"media_keys"`
		} `json:"attachments"`
	} `json:"data"`
	Includes *struct {
		Media []struct {
			MediaKey        string `json:"media_key"`
			URL             string `json:"url"`
			PreviewImageURL string `json:"preview_image_url"`
		} `json:"media"`
	} `json:"includes"`
	Errors []apiError `json:"errors"`
}

type apiError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}
