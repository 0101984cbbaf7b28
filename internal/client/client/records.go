package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/passclient/internal/client/models"
)

func (c *HTTPClient) recordsURL(userID models.ID) string {
	return c.apiURL + "/api/passwords/user/" + url.PathEscape(userID.String())
}

func (c *HTTPClient) recordURL(userID, id models.ID) string {
	return c.recordsURL(userID) + "/" + url.PathEscape(id.String())
}

func (c *HTTPClient) ListRecords(ctx context.Context, token string, userID models.ID) (models.Records, error) {
	var recs models.Records
	if err := c.do(ctx, http.MethodGet, c.recordsURL(userID), token, nil, &recs); err != nil {
		return nil, err
	}
	if recs == nil {
		recs = models.Records{}
	}
	return recs, nil
}

func (c *HTTPClient) GetRecord(ctx context.Context, token string, userID, id models.ID) (models.PasswordRecord, error) {
	var rec models.PasswordRecord
	if err := c.do(ctx, http.MethodGet, c.recordURL(userID, id), token, nil, &rec); err != nil {
		return models.PasswordRecord{}, err
	}
	return rec, nil
}

func (c *HTTPClient) CreateRecord(ctx context.Context, token string, userID models.ID, rec models.PasswordRecord) (models.PasswordRecord, error) {
	rec.ID = ""
	var created models.PasswordRecord
	if err := c.do(ctx, http.MethodPost, c.recordsURL(userID), token, rec, &created); err != nil {
		return models.PasswordRecord{}, err
	}
	return created, nil
}

func (c *HTTPClient) UpdateRecord(ctx context.Context, token string, userID, id models.ID, rec models.PasswordRecord) (models.PasswordRecord, error) {
	rec.ID = id
	var updated models.PasswordRecord
	if err := c.do(ctx, http.MethodPut, c.recordURL(userID, id), token, rec, &updated); err != nil {
		return models.PasswordRecord{}, err
	}
	return updated, nil
}

// DeleteRecord succeeds on any 2xx, with or without a body.
func (c *HTTPClient) DeleteRecord(ctx context.Context, token string, userID, id models.ID) error {
	return c.do(ctx, http.MethodDelete, c.recordURL(userID, id), token, nil, nil)
}
