package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hugh/teamhub/internal/api/dto"
	"github.com/hugh/teamhub/internal/terms"
)

// TermsChecker is the part of terms.Service the gate needs.
type TermsChecker interface {
	Current() terms.Terms
	HasAcceptedCurrent(ctx context.Context, subject terms.HasAgreements) (bool, error)
}

// EnsureTermsAccepted blocks authenticated users who have not accepted the
// current terms version. It must run after Auth.
func EnsureTermsAccepted(checker TermsChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := CurrentUser(r.Context())
			if user == nil {
				next.ServeHTTP(w, r)
				return
			}

			accepted, err := checker.HasAcceptedCurrent(r.Context(), user)
			if err != nil {
				logger.Error("checking terms acceptance", "error", err, "user_id", user.PublicID)
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if accepted {
				next.ServeHTTP(w, r)
				return
			}

			current := checker.Current()
			writeJSON(w, http.StatusForbidden, dto.TermsRequiredResponse{
				Error:           "You must accept the current terms of service before continuing.",
				MustAcceptTerms: true,
				Terms: dto.TermsDTO{
					Version: current.Version,
					Label:   current.Label,
					URL:     current.URL,
				},
			})
		})
	}
}
