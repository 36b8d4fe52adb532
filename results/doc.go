// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package results turns a session's questions and responses into the
statistics shown on the results screen.

Aggregate is pure: callers load the session, its questions in display order
and each question's responses, then pass them in together with the viewer.

	res, err := results.Aggregate(session, results.Viewer{UserID: uid})
	if errors.Is(err, results.ErrPermissionDenied) {
		// 403
	}

# Visibility

The session owner always sees results. Everyone else sees them only while
the session has ShowRealTimeResults set. Responder names are shown to the
owner only; anonymous participants appear as "Anonymous".

# Per Type

	MULTIPLE_CHOICE, POLL  optionCounts and percentages per declared option
	TEXT                   every text answer
	PHOTO_UPLOAD           every answer with a file URL
	RATING                 averageRating (2 decimals) and ratingDistribution

Percentages are round(100*count/totalResponses) computed per option, so they
may not add up to exactly 100. Ratings that do not parse as a finite number
are skipped; if none parse, the rating fields are omitted.
*/
package results
