package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"reeldesk/internal/bootstrap"
	"reeldesk/internal/bootstrap/logging"
	domainreview "reeldesk/internal/domain/review"
	"reeldesk/internal/errs"
	"reeldesk/internal/ports"
	"reeldesk/internal/usecase/review"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the review action HTTP API",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		addr, _ := cmd.Flags().GetString("addr")
		addr = strings.TrimSpace(addr)
		if addr == "" {
			addr = strings.TrimSpace(app.Config.Server.Addr)
		}
		if addr == "" {
			addr = ":8080"
		}

		server := &http.Server{
			Addr:    addr,
			Handler: newReviewActionHandler(svc),
		}

		logging.Info(ctx, "review api server started", slog.String("addr", addr))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error(ctx, "review api server failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "serve review api")
		}
		return nil
	}),
}

type reviewActionService interface {
	ApplyAction(context.Context, review.ApplyActionInput) (review.ApplyActionResult, error)
	ApplyBulkAction(context.Context, review.BulkActionInput) (review.BulkActionResult, error)
}

type reviewActionHTTPHandler struct {
	svc reviewActionService
}

type actionFeedbackRequest struct {
	GeneralText string `json:"general_text"`
	Annotations []struct {
		OffsetSeconds int    `json:"offset_seconds"`
		Comment       string `json:"comment"`
	} `json:"annotations"`
	DueDate string `json:"due_date"`
}

type actionRequest struct {
	SubmissionID   string                `json:"submission_id"`
	ActorID        string                `json:"actor_id"`
	ActorRole      string                `json:"actor_role"`
	Action         string                `json:"action"`
	Feedback       actionFeedbackRequest `json:"feedback"`
	SchedulingHint string                `json:"scheduling_hint"`
}

type bulkActionRequest struct {
	SubmissionIDs  []string              `json:"submission_ids"`
	ActorID        string                `json:"actor_id"`
	ActorRole      string                `json:"actor_role"`
	Action         string                `json:"action"`
	Feedback       actionFeedbackRequest `json:"feedback"`
	SchedulingHint string                `json:"scheduling_hint"`
}

type actionResponse struct {
	SubmissionID string `json:"submission_id"`
	NewState     string `json:"new_state"`
	NewVersion   int64  `json:"new_version"`
}

type bulkItemResponse struct {
	NewState   string `json:"new_state,omitempty"`
	NewVersion int64  `json:"new_version,omitempty"`
	Error      string `json:"error,omitempty"`
}

type bulkActionResponse struct {
	Items map[string]bulkItemResponse `json:"items"`
}

type actionErrorResponse struct {
	Error string `json:"error"`
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (defaults to server.addr from config)")
}

func newReviewActionHandler(svc reviewActionService) http.Handler {
	h := &reviewActionHTTPHandler{svc: svc}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/actions", h.handleAction)
	mux.HandleFunc("/v1/actions/bulk", h.handleBulkAction)
	return mux
}

func (h *reviewActionHTTPHandler) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeActionError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.svc == nil {
		writeActionError(w, http.StatusInternalServerError, "review service is not configured")
		return
	}

	var request actionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeActionError(w, http.StatusBadRequest, "invalid json payload")
		return
	}

	result, err := h.svc.ApplyAction(r.Context(), review.ApplyActionInput{
		SubmissionID:   request.SubmissionID,
		ActorID:        request.ActorID,
		ActorRole:      request.ActorRole,
		Action:         request.Action,
		Feedback:       feedbackFromRequest(request.Feedback),
		SchedulingHint: request.SchedulingHint,
	})
	if err != nil {
		writeActionError(w, statusForReviewError(err), err.Error())
		return
	}

	writeActionJSON(w, http.StatusOK, actionResponse{
		SubmissionID: result.SubmissionID,
		NewState:     string(result.NewState),
		NewVersion:   result.NewVersion,
	})
}

func (h *reviewActionHTTPHandler) handleBulkAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeActionError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.svc == nil {
		writeActionError(w, http.StatusInternalServerError, "review service is not configured")
		return
	}

	var request bulkActionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeActionError(w, http.StatusBadRequest, "invalid json payload")
		return
	}

	result, err := h.svc.ApplyBulkAction(r.Context(), review.BulkActionInput{
		SubmissionIDs:  request.SubmissionIDs,
		ActorID:        request.ActorID,
		ActorRole:      request.ActorRole,
		Action:         request.Action,
		Feedback:       feedbackFromRequest(request.Feedback),
		SchedulingHint: request.SchedulingHint,
	})
	if err != nil {
		writeActionError(w, statusForReviewError(err), err.Error())
		return
	}

	response := bulkActionResponse{Items: make(map[string]bulkItemResponse, len(result.Items))}
	for id, item := range result.Items {
		if item.Err != nil {
			response.Items[id] = bulkItemResponse{Error: item.Err.Error()}
			continue
		}
		response.Items[id] = bulkItemResponse{
			NewState:   string(item.Result.NewState),
			NewVersion: item.Result.NewVersion,
		}
	}

	// The batch itself succeeded; per-item failures ride in the body.
	writeActionJSON(w, http.StatusOK, response)
}

func feedbackFromRequest(request actionFeedbackRequest) review.FeedbackInput {
	feedback := review.FeedbackInput{
		GeneralText: request.GeneralText,
		DueDate:     request.DueDate,
	}
	for _, annotation := range request.Annotations {
		feedback.Annotations = append(feedback.Annotations, review.AnnotationInput{
			OffsetSeconds: annotation.OffsetSeconds,
			Comment:       annotation.Comment,
		})
	}
	return feedback
}

// statusForReviewError maps workflow errors onto HTTP statuses: denied actors
// get 403, lost version races get 409, rule violations get 422.
func statusForReviewError(err error) int {
	switch {
	case errors.Is(err, ports.ErrSubmissionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainreview.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, domainreview.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, domainreview.ErrIllegalTransition),
		errors.Is(err, domainreview.ErrFeedbackRequired),
		errors.Is(err, domainreview.ErrAnnotationOffsetNegative),
		errors.Is(err, domainreview.ErrAnnotationPastDuration),
		errors.Is(err, domainreview.ErrAnnotationCommentMissing),
		errors.Is(err, domainreview.ErrAnnotationsOutOfOrder),
		errors.Is(err, domainreview.ErrDueDateInvalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domainreview.ErrUnknownState),
		errors.Is(err, domainreview.ErrUnknownRole),
		errors.Is(err, domainreview.ErrUnknownAction):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeActionError(w http.ResponseWriter, status int, message string) {
	writeActionJSON(w, status, actionErrorResponse{Error: message})
}

func writeActionJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
