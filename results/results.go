// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package results

import (
	"errors"
	"time"

	"github.com/benny2744/ARS-BZ/models"
)

// ErrPermissionDenied is returned when a non-admin asks for results of a
// session that does not show real-time results
var ErrPermissionDenied = errors.New("results not available")

// AnonymousName labels responses without a linked user in admin views
const AnonymousName = "Anonymous"

// Session is the loaded input to Aggregate
type Session struct {
	ID                  string
	Title               string
	Status              string
	AdminID             string
	ShowRealTimeResults bool
	TotalParticipants   int
	Questions           []Question // in display order
}

type Question struct {
	ID        string
	Title     string
	Type      string
	Options   []string
	Responses []Response
}

type Response struct {
	ID          string
	TextValue   *string
	OptionValue *string
	FileURL     *string
	SubmittedAt time.Time

	// ResponderName is the linked user's name; empty when the response
	// came from an anonymous participant
	ResponderName string
}

// Viewer is whoever is asking. UserID is empty for anonymous callers.
type Viewer struct {
	UserID string
}

// SessionResults is the client-facing results document
type SessionResults struct {
	SessionID         string           `json:"sessionId"`
	Title             string           `json:"title"`
	TotalParticipants int              `json:"totalParticipants"`
	Status            string           `json:"status"`
	Results           []QuestionResult `json:"results"`
}

// QuestionResult carries the base fields plus the statistics for its type.
// Fields that do not apply to the type are left out of the JSON.
type QuestionResult struct {
	QuestionID     string `json:"questionId"`
	Title          string `json:"title"`
	Type           string `json:"type"`
	TotalResponses int    `json:"totalResponses"`

	// MULTIPLE_CHOICE and POLL
	Options      []string       `json:"options,omitzero"`
	OptionCounts map[string]int `json:"optionCounts,omitzero"`
	Percentages  map[string]int `json:"percentages,omitzero"`

	// TEXT
	TextResponses []TextResponse `json:"textResponses,omitzero"`

	// PHOTO_UPLOAD
	Photos []Photo `json:"photos,omitzero"`

	// RATING, only when at least one rating parsed
	AverageRating      *float64       `json:"averageRating,omitempty"`
	RatingDistribution map[string]int `json:"ratingDistribution,omitzero"`
}

// TextResponse lists one response. Text is null when the response was
// stored without a text value.
type TextResponse struct {
	ID          string    `json:"id"`
	Text        *string   `json:"text"`
	SubmittedBy string    `json:"submittedBy,omitempty"` // admin viewers only
	SubmittedAt time.Time `json:"submittedAt"`
}

type Photo struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	SubmittedBy *string   `json:"submittedBy"` // null for non-admin viewers
	SubmittedAt time.Time `json:"submittedAt"`
}

// IsAdmin reports whether the viewer owns the session
func (s Session) IsAdmin(v Viewer) bool {
	return v.UserID != "" && v.UserID == s.AdminID
}

// Aggregate computes per-question statistics for a session.
// Non-admin viewers get ErrPermissionDenied unless the session shows
// real-time results; nothing is computed in that case.
func Aggregate(s Session, v Viewer) (*SessionResults, error) {
	isAdmin := s.IsAdmin(v)
	if !isAdmin && !s.ShowRealTimeResults {
		return nil, ErrPermissionDenied
	}

	out := &SessionResults{
		SessionID:         s.ID,
		Title:             s.Title,
		TotalParticipants: s.TotalParticipants,
		Status:            s.Status,
		Results:           make([]QuestionResult, 0, len(s.Questions)),
	}

	for _, q := range s.Questions {
		out.Results = append(out.Results, aggregateQuestion(q, isAdmin))
	}

	return out, nil
}

func aggregateQuestion(q Question, isAdmin bool) QuestionResult {
	res := QuestionResult{
		QuestionID:     q.ID,
		Title:          q.Title,
		Type:           q.Type,
		TotalResponses: len(q.Responses),
	}

	switch q.Type {
	case models.QuestionMultipleChoice, models.QuestionPoll:
		res.Options = q.Options
		if res.Options == nil {
			res.Options = []string{}
		}
		res.OptionCounts, res.Percentages = countOptions(q.Options, q.Responses)

	case models.QuestionText:
		res.TextResponses = textResponses(q.Responses, isAdmin)

	case models.QuestionPhotoUpload:
		res.Photos = photos(q.Responses, isAdmin)

	case models.QuestionRating:
		values := parseRatings(q.Responses)
		if len(values) > 0 {
			avg := roundTo(mean(values), 2)
			res.AverageRating = &avg
			res.RatingDistribution = distribution(values)
		}
	}

	return res
}

// countOptions tallies responses per declared option.
// Values that match no option are dropped without error.
func countOptions(options []string, responses []Response) (map[string]int, map[string]int) {
	counts := make(map[string]int, len(options))
	for _, opt := range options {
		counts[opt] = 0
	}

	for _, r := range responses {
		if r.OptionValue == nil {
			continue
		}
		if _, ok := counts[*r.OptionValue]; ok {
			counts[*r.OptionValue]++
		}
	}

	total := len(responses)
	percentages := make(map[string]int, len(options))
	for opt, n := range counts {
		percentages[opt] = percentage(n, total)
	}

	return counts, percentages
}

func textResponses(responses []Response, isAdmin bool) []TextResponse {
	out := make([]TextResponse, 0, len(responses))
	for _, r := range responses {
		tr := TextResponse{
			ID:          r.ID,
			Text:        r.TextValue,
			SubmittedAt: r.SubmittedAt,
		}
		if isAdmin {
			tr.SubmittedBy = r.displayName()
		}
		out = append(out, tr)
	}
	return out
}

func photos(responses []Response, isAdmin bool) []Photo {
	out := make([]Photo, 0, len(responses))
	for _, r := range responses {
		if r.FileURL == nil || *r.FileURL == "" {
			continue
		}
		p := Photo{
			ID:          r.ID,
			URL:         *r.FileURL,
			SubmittedAt: r.SubmittedAt,
		}
		if isAdmin {
			name := r.displayName()
			p.SubmittedBy = &name
		}
		out = append(out, p)
	}
	return out
}

func (r Response) displayName() string {
	if r.ResponderName == "" {
		return AnonymousName
	}
	return r.ResponderName
}
