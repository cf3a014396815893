package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/playoff-pool/internal/domain/roster"
	"github.com/riskibarqy/playoff-pool/internal/domain/round"
	"github.com/riskibarqy/playoff-pool/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
}

func TestMapError(t *testing.T) {
	partial := &usecase.PartialWriteError{
		ParticipantID: "user-1",
		Step:          "roster rows",
		Err:           fmt.Errorf("%w: create roster rows: boom", usecase.ErrStoreUnavailable),
	}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{name: "invalid input", err: fmt.Errorf("%w: bad", usecase.ErrInvalidInput), wantStatus: http.StatusBadRequest, wantReason: "invalidInput"},
		{name: "unknown round", err: fmt.Errorf("%w: %q", round.ErrUnknownRound, "week9"), wantStatus: http.StatusBadRequest, wantReason: "invalidInput"},
		{name: "incomplete roster", err: &roster.IncompleteRosterError{Slot: roster.SlotK1}, wantStatus: http.StatusBadRequest, wantReason: "invalidRoster"},
		{name: "duplicate team", err: fmt.Errorf("%w: %w", usecase.ErrInvalidInput, roster.ErrDuplicateTeam), wantStatus: http.StatusBadRequest, wantReason: "invalidRoster"},
		{name: "duplicate name", err: fmt.Errorf("%w: %w", usecase.ErrInvalidInput, usecase.ErrDuplicatePlayerName), wantStatus: http.StatusBadRequest, wantReason: "duplicatePlayerName"},
		{name: "not found", err: usecase.ErrNotFound, wantStatus: http.StatusNotFound, wantReason: "notFound"},
		{name: "unauthorized", err: usecase.ErrUnauthorized, wantStatus: http.StatusUnauthorized, wantReason: "unauthorized"},
		{name: "store", err: fmt.Errorf("%w: list players: timeout", usecase.ErrStoreUnavailable), wantStatus: http.StatusServiceUnavailable, wantReason: "storeUnavailable"},
		{name: "partial write", err: partial, wantStatus: http.StatusInternalServerError, wantReason: "partialWrite"},
		{name: "unknown", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantReason: "internalError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(context.Background(), tt.err)
			if got.HTTPStatus != tt.wantStatus || got.Reason != tt.wantReason {
				t.Fatalf("mapError(%v)=%d/%s want=%d/%s", tt.err, got.HTTPStatus, got.Reason, tt.wantStatus, tt.wantReason)
			}
		})
	}
}

func TestWriteError_CarriesMissingSlotAndParticipant(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: %w", usecase.ErrInvalidInput, &roster.IncompleteRosterError{Slot: roster.SlotTE2}))

	var body googleResponseEnvelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	if body.Error == nil || len(body.Error.Errors) != 1 {
		t.Fatalf("expected one error item, got %+v", body.Error)
	}
	if got := body.Error.Errors[0].Location; got != "TE2" {
		t.Fatalf("expected location TE2, got %q", got)
	}

	rec = httptest.NewRecorder()
	writeError(context.Background(), rec, &usecase.PartialWriteError{ParticipantID: "user-9", Step: "stat rows", Err: errors.New("down")})
	body = googleResponseEnvelope{}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	if got := body.Error.Errors[0].ParticipantID; got != "user-9" {
		t.Fatalf("expected participantId user-9, got %q", got)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
}
