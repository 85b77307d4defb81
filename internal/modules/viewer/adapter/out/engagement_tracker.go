package out

import (
	"context"

	engagementdto "granth/internal/modules/engagement/dto"
	engagementin "granth/internal/modules/engagement/port/in"
	viewerout "granth/internal/modules/viewer/port/out"
)

// EngagementTracker records reading for the reader resolved at startup.
type EngagementTracker struct {
	engagement engagementin.Usecase
	userID     string
}

func NewEngagementTracker(engagement engagementin.Usecase, userID string) viewerout.ReadingTracker {
	return &EngagementTracker{engagement: engagement, userID: userID}
}

func (a *EngagementTracker) Begin(ctx context.Context, bookID string, page int) (viewerout.TrackingSession, error) {
	t, err := a.engagement.BeginSession(ctx, engagementdto.BeginSessionInput{UserID: a.userID, BookID: bookID, Page: page})
	if err != nil {
		return nil, err
	}
	return trackingSession{t: t}, nil
}

type trackingSession struct {
	t engagementin.SessionTracker
}

func (s trackingSession) PageChanged(page, totalPages int) { s.t.PageChanged(page, totalPages) }
func (s trackingSession) End(page int)                     { s.t.Close(page) }
