package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/cimillas/attendance-nft/internal/app"
	"github.com/cimillas/attendance-nft/internal/domain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
)

// EventCreator registers events on the ledger.
type EventCreator interface {
	Run(ctx context.Context, in app.CreateEventInput) (*domain.Attempt, error)
}

// Minter mints an attendance token for the wallet's account.
type Minter interface {
	Run(ctx context.Context, in app.MintInput) (*domain.Attempt, error)
}

// EventReader is the read side used by GET /events/{code}.
type EventReader interface {
	Get(ctx context.Context, code string, account *common.Address) (app.EventView, error)
}

type createEventRequest struct {
	EventCode     string `json:"event_code"`
	EventName     string `json:"event_name"`
	Location      string `json:"location"`
	Timestamp     int64  `json:"timestamp"`
	HostName      string `json:"host_name"`
	AttendeeCount uint64 `json:"attendee_count"`
	ContentHash   string `json:"content_hash"`
}

type mintRequest struct {
	ContentHash string `json:"content_hash"`
}

// HandleCreateEvent returns an HTTP handler that runs the create-event flow.
func HandleCreateEvent(flow EventCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createEventRequest
		if err := decodeBody(r, &req, false); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		attempt, err := flow.Run(r.Context(), app.CreateEventInput{
			EventCode:     req.EventCode,
			EventName:     req.EventName,
			Location:      req.Location,
			Timestamp:     req.Timestamp,
			HostName:      req.HostName,
			AttendeeCount: req.AttendeeCount,
			ContentHash:   req.ContentHash,
		})
		writeAttempt(w, attempt, err)
	}
}

// HandleMint returns an HTTP handler that runs the mint flow for {code}.
func HandleMint(flow Minter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req mintRequest
		if err := decodeBody(r, &req, true); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		attempt, err := flow.Run(r.Context(), app.MintInput{
			EventCode:   chi.URLParam(r, "code"),
			ContentHash: req.ContentHash,
		})
		writeAttempt(w, attempt, err)
	}
}

// HandleGetEvent returns an HTTP handler for event lookups.
func HandleGetEvent(lookup EventReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, err := domain.NormalizeEventCode(chi.URLParam(r, "code"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidEventCode, err.Error())
			return
		}

		var account *common.Address
		if raw := r.URL.Query().Get("account"); raw != "" {
			if !common.IsHexAddress(raw) {
				writeError(w, http.StatusBadRequest, codeInvalidAddress, domain.ErrInvalidAddress.Error())
				return
			}
			addr := common.HexToAddress(raw)
			account = &addr
		}

		view, err := lookup.Get(r.Context(), code, account)
		if err != nil {
			writeDomainError(w, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, newEventViewResponse(view))
	}
}

func writeAttempt(w http.ResponseWriter, attempt *domain.Attempt, err error) {
	if err != nil {
		writeDomainError(w, err, attempt)
		return
	}
	writeJSON(w, http.StatusCreated, newAttemptResponse(attempt))
}

func decodeBody(r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	if allowEmpty && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
