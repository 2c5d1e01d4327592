package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/anicoll/obis-integration/internal/pkg/model"
	"github.com/anicoll/obis-integration/internal/pkg/obis"
	"github.com/anicoll/obis-integration/internal/pkg/registry"
)

type readerService interface {
	Status() model.Status
	Codes() []model.Descriptor
	AddCode(d model.Descriptor) error
	Read(ctx context.Context) model.ReadingSet
}

type readingStore interface {
	GetLatestReadings(ctx context.Context) (model.Records, error)
}

type server struct {
	reader readerService
	store  readingStore
	logger *zap.Logger
}

func New(reader readerService, store readingStore) *server {
	return &server{reader: reader, store: store, logger: zap.L()}
}

// Router wires the API surface. Callers wrap it in middleware.
func (s *server) Router() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", s.GetStatus)
	mux.HandleFunc("GET /codes", s.GetCodes)
	mux.HandleFunc("POST /codes", s.PostCodes)
	mux.HandleFunc("POST /read", s.PostRead)
	mux.HandleFunc("GET /readings/latest", s.GetLatestReadings)
	return mux
}

func (s *server) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.reader.Status())
}

// codeInfo decorates a descriptor with its advisory classification.
type codeInfo struct {
	model.Descriptor
	CodeType string `json:"code_type"`
	Media    string `json:"media"`
}

func (s *server) GetCodes(w http.ResponseWriter, r *http.Request) {
	codes := s.reader.Codes()
	infos := make([]codeInfo, 0, len(codes))
	for _, d := range codes {
		info := codeInfo{Descriptor: d}
		if c, err := obis.Parse(d.Code); err == nil {
			info.CodeType = c.Classify().String()
			info.Media = c.MediaClass().String()
		}
		infos = append(infos, info)
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *server) PostCodes(w http.ResponseWriter, r *http.Request) {
	descriptor, err := unmarshalPayload[model.Descriptor](r)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := s.reader.AddCode(descriptor); err != nil {
		if errors.Is(err, registry.ErrBadDescriptor) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(err.Error()))
			return
		}
		handleError(w, err)
		return
	}
	s.logger.Info("registered code", zap.String("code", descriptor.Code), zap.String("name", descriptor.Name))
	w.WriteHeader(http.StatusCreated)
}

func (s *server) PostRead(w http.ResponseWriter, r *http.Request) {
	set := s.reader.Read(r.Context())
	writeJSON(w, http.StatusOK, set)
}

func (s *server) GetLatestReadings(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("no reading store configured"))
		return
	}
	records, err := s.store.GetLatestReadings(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func unmarshalPayload[T any](r *http.Request) (T, error) {
	var payload T
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return payload, err
	}
	return payload, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func handleError(w http.ResponseWriter, err error) {
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte(err.Error()))
}
