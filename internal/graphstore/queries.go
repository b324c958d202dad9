package graphstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// ensureRepository creates the configured repository with the
// owl-horst-optimized ruleset if it does not already exist.
func (c *Client) ensureRepository(ctx context.Context) error {
	exists, err := c.repositoryExists(ctx)
	if err != nil {
		return fmt.Errorf("checking repository existence: %w", err)
	}
	if exists {
		return nil
	}
	return c.createRepository(ctx)
}

func (c *Client) repositoryExists(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/rest/repositories", nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("graphdb unavailable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return false, fmt.Errorf("graphdb returned status %d listing repositories", resp.StatusCode)
	}

	var repos []struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return false, fmt.Errorf("decoding repository list: %w", err)
	}
	for _, r := range repos {
		if r.ID == c.repository {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) createRepository(ctx context.Context) error {
	payload := map[string]string{
		"id":      c.repository,
		"type":    "free",
		"title":   c.repository + " Repository",
		"ruleset": "owl-horst-optimized",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rest/repositories", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graphdb unavailable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("failed to create repository %s, status %d", c.repository, resp.StatusCode)
	}
	return nil
}

// selectJSON executes a SPARQL SELECT and decodes the
// application/sparql-results+json response.
func (c *Client) selectJSON(ctx context.Context, query string) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.queryEndpoint(), bytes.NewBufferString(query))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/sparql-query")
	req.Header.Set("Accept", "application/sparql-results+json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graphdb unavailable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("graphdb select failed with status %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding sparql-results+json: %w", err)
	}
	return result, nil
}

// extractMaxInt pulls the bound integer value of varName out of a
// sparql-results+json payload's first binding row, returning 0 if absent.
func extractMaxInt(results map[string]interface{}, varName string) int {
	resultsObj, ok := results["results"].(map[string]interface{})
	if !ok {
		return 0
	}
	bindings, ok := resultsObj["bindings"].([]interface{})
	if !ok || len(bindings) == 0 {
		return 0
	}
	row, ok := bindings[0].(map[string]interface{})
	if !ok {
		return 0
	}
	binding, ok := row[varName].(map[string]interface{})
	if !ok {
		return 0
	}
	valueStr, _ := binding["value"].(string)
	if valueStr == "" {
		return 0
	}
	n, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0
	}
	return n
}
