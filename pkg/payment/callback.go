package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"tableflip.dev/somnium/pkg/listen"
)

// CallbackServer listens locally for the checkout's return redirect.
type CallbackServer struct {
	addr    string
	granter Granter
	log     zerolog.Logger

	once    sync.Once
	granted chan struct{}

	mu    sync.Mutex
	bound net.Addr
}

// NewCallbackServer builds a server for addr (host:port).
func NewCallbackServer(addr string, g Granter, log zerolog.Logger) *CallbackServer {
	return &CallbackServer{
		addr:    addr,
		granter: g,
		log:     log,
		granted: make(chan struct{}),
	}
}

// ReturnURL is the address to hand to the checkout. Once Serve is
// listening it reports the bound port.
func (s *CallbackServer) ReturnURL() string {
	s.mu.Lock()
	bound := s.bound
	s.mu.Unlock()
	return listen.URL("http", s.addr, bound, "/return") + "?" + SuccessParam + "=true"
}

// Granted is closed once premium was granted.
func (s *CallbackServer) Granted() <-chan struct{} {
	return s.granted
}

// Handler routes the callback endpoints.
func (s *CallbackServer) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/return", s.handleReturn).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	return r
}

func (s *CallbackServer) handleReturn(w http.ResponseWriter, r *http.Request) {
	res, err := Observe(r.URL.String(), s.granter)
	if err != nil {
		s.log.Error().Err(err).Msg("payment return failed")
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !res.Granted {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "payment not completed"})
		return
	}
	s.once.Do(func() { close(s.granted) })
	s.log.Info().Msg("payment return observed")
	respondJSON(w, http.StatusOK, map[string]string{"message": ActivatedMessage})
}

// Serve listens until ctx is done or the listener fails.
func (s *CallbackServer) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("payment: listen %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.bound = ln.Addr()
	s.mu.Unlock()
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
