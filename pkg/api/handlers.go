package api

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/welldata/dlis/pkg/dlis"
)

// Server holds the API server state. File handles are not safe for
// concurrent use, so every read goes through the mutex.
type Server struct {
	mu      sync.Mutex
	file    FileReader
	config  ServerConfig
	metrics *Metrics
	logger  *zap.Logger
}

// NewServer creates a new API server over an open file
func NewServer(file FileReader, config ServerConfig, metrics *Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		file:    file,
		config:  config,
		metrics: metrics,
		logger:  logger,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleLabel returns the storage unit label of the open file
func (s *Server) handleLabel(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	label := s.file.Label()
	s.mu.Unlock()
	sendSuccess(w, label)
}

// handleRecords lists the record index. Pagination uses offset and limit
// query parameters; limit defaults to the full index.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := pagination(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	start := time.Now()
	indexErr := s.file.IndexAll()
	entries := s.file.Index().Entries()
	complete := s.file.Index().Complete()
	s.mu.Unlock()

	s.metrics.RecordReadOperation("index", indexErr == nil, time.Since(start))
	s.metrics.UpdateIndexSize(len(entries))

	if indexErr != nil {
		s.logger.Warn("index scan stopped early",
			zap.String("path", s.file.Path()),
			zap.Error(indexErr))
	}

	if offset > len(entries) {
		offset = len(entries)
	}
	end := len(entries)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	sendSuccess(w, RecordListing{
		Count:    len(entries),
		Complete: complete,
		Records:  entries[offset:end],
	})
}

// handleRecord serves the raw payload of one logical record
func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	pos, err := strconv.ParseInt(chi.URLParam(r, "pos"), 10, 64)
	if err != nil {
		sendError(w, "Invalid record position", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	start := time.Now()
	payload, err := s.file.RawRecordAt(pos)
	s.mu.Unlock()

	s.metrics.RecordReadOperation("raw", err == nil, time.Since(start))
	if err != nil {
		s.sendFileError(w, err)
		return
	}
	s.metrics.RecordBytesRead(len(payload))

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// handleRecordSets decodes one explicit record into its sets
func (s *Server) handleRecordSets(w http.ResponseWriter, r *http.Request) {
	pos, err := strconv.ParseInt(chi.URLParam(r, "pos"), 10, 64)
	if err != nil {
		sendError(w, "Invalid record position", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	start := time.Now()
	sets, err := s.file.DecodeExplicitAt(pos)
	s.mu.Unlock()

	s.metrics.RecordReadOperation("decode", err == nil, time.Since(start))
	if err != nil {
		s.sendFileError(w, err)
		return
	}

	sendSuccess(w, sets)
}

// handleStats summarizes the open file
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	label := s.file.Label()
	entries := s.file.Index().Entries()
	stats := FileStats{
		Path:         s.file.Path(),
		SizeBytes:    s.file.Size(),
		StorageSetID: label.ID,
		Sequence:     label.Sequence,
		Records:      len(entries),
	}
	for _, e := range entries {
		if e.Explicit {
			stats.ExplicitRecords++
		}
		if e.Encrypted {
			stats.EncryptedRecords++
		}
	}
	s.mu.Unlock()

	sendSuccess(w, stats)
}

// sendFileError maps read errors onto HTTP status codes
func (s *Server) sendFileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dlis.ErrInvalidBookmark):
		sendError(w, "No record at that position", http.StatusNotFound)
	case errors.Is(err, dlis.ErrImplicitRecord):
		sendError(w, "Record is implicitly formatted, fetch it raw", http.StatusUnprocessableEntity)
	case errors.Is(err, dlis.ErrEncryptedRecord):
		sendError(w, "Record is encrypted, fetch it raw", http.StatusUnprocessableEntity)
	case errors.Is(err, dlis.ErrFileClosed):
		sendError(w, "File is closed", http.StatusServiceUnavailable)
	default:
		s.logger.Error("read failed", zap.Error(err))
		sendError(w, err.Error(), http.StatusInternalServerError)
	}
}

func pagination(r *http.Request) (offset, limit int, err error) {
	q := r.URL.Query()
	if v := q.Get("offset"); v != "" {
		offset, err = strconv.Atoi(v)
		if err != nil || offset < 0 {
			return 0, 0, errors.New("invalid offset parameter")
		}
	}
	if v := q.Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 0 {
			return 0, 0, errors.New("invalid limit parameter")
		}
	}
	return offset, limit, nil
}
