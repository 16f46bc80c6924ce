/*************************************************************************
 * Copyright 2026 the servicenow-agent authors. All rights reserved.
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package types

import (
	json "github.com/goccy/go-json"
)

// Ticket is a single record returned by the search backend. The backend
// passes ServiceNow table API rows through mostly untouched, so every scalar
// field arrives as a string; fields missing from the row decode to "".
type Ticket struct {
	Number           string    `json:"number"`
	ShortDescription string    `json:"short_description"`
	State            string    `json:"state"`
	OpenedAt         string    `json:"opened_at"`
	AssignedTo       *Assignee `json:"assigned_to,omitempty"`
}

// Assignee is the nested assignment reference on a ticket.
// ServiceNow returns either a reference object or a bare empty string when
// the field is unset, so it gets a custom decoder.
type Assignee struct {
	DisplayValue string `json:"display_value"`
	Link         string `json:"link,omitempty"`
}

func (a *Assignee) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		// bare string form (typically "")
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		a.DisplayValue = s
		return nil
	}
	type alias Assignee
	var v alias
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*a = Assignee(v)
	return nil
}

// SearchResponse is the envelope returned by the search endpoint.
// On failure Success is false and Error carries the backend's reason.
type SearchResponse struct {
	Success bool     `json:"success"`
	Data    []Ticket `json:"data"`
	Error   string   `json:"error,omitempty"`
}

// SearchOptions tunes a single search call.
type SearchOptions struct {
	// MaxResults caps the number of records the backend may return.
	// Values <= 0 fall back to client.DefaultMaxResults.
	MaxResults int
}

type HealthResponse struct {
	Status string `json:"status"`
}
