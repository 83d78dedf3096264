package retriever

import "errors"

type Document struct {
	Similarity float64 `json:"similarity"`
	Source     string  `json:"source"`
	Content    string  `json:"content"`
}

// Row is one match_documents result before validation. A nil field means the
// backend did not send it.
type Row struct {
	Similarity *float64 `json:"similarity"`
	Source     *string  `json:"source"`
	Content    *string  `json:"content"`
}

func (r Row) Document() (Document, error) {
	if r.Similarity == nil {
		return Document{}, errors.New("similarity is missing")
	}

	if r.Source == nil {
		return Document{}, errors.New("source is missing")
	}

	if r.Content == nil {
		return Document{}, errors.New("content is missing")
	}

	return Document{
		Similarity: *r.Similarity,
		Source:     *r.Source,
		Content:    *r.Content,
	}, nil
}
