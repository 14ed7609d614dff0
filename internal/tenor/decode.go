package tenor

import (
	"encoding/json"
)

// DecodeGifUrls extracts the url of the gif format of every result
func DecodeGifUrls(data []byte) ([]string, error) {

	var response SearchResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(response.Results))
	for _, result := range response.Results {
		if gif, ok := result.MediaFormats["gif"]; ok && gif.Url != "" {
			urls = append(urls, gif.Url)
		}
	}
	return urls, nil
}
