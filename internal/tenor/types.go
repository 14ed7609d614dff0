package tenor

type MediaFormat struct {
	Url string `json:"url"`
}

type Result struct {
	Id           string                 `json:"id"`
	MediaFormats map[string]MediaFormat `json:"media_formats"`
}

type SearchResponse struct {
	Results []Result `json:"results"`
	Next    string   `json:"next"`
}
