package backend

import (
	"fmt"
	"net/url"

	"github.com/google/go-querystring/query"
)

// Page - параметры пагинации backend (page с нуля, per_page)
type Page struct {
	Page    int `url:"page"`
	PerPage int `url:"per_page"`
}

// UserSearch - поиск пользователей в админке. Backend ждет оба параметра, даже пустые.
type UserSearch struct {
	Email      string `url:"email"`
	PageNumber int    `url:"page_number"`
}

// buildQuery кодирует v через go-querystring и добавляет business_id
func buildQuery(v any, businessID string) (string, error) {
	values := url.Values{}
	if v != nil {
		encoded, err := query.Values(v)
		if err != nil {
			return "", fmt.Errorf("encode query: %w", err)
		}
		values = encoded
	}
	if businessID != "" && values.Get("business_id") == "" {
		values.Set("business_id", businessID)
	}
	return values.Encode(), nil
}
