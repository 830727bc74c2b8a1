package receiver

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/alarm-tone/internal/domain/alarm"
	"github.com/oshokin/alarm-tone/internal/logger"
	pb "github.com/oshokin/alarm-tone/internal/pb/v1"
	repo "github.com/oshokin/alarm-tone/internal/repository/delivery"
)

// catalog is the read side of the service used by the HTTP endpoints.
type catalog interface {
	List(ctx context.Context) ([]*domain.Delivery, error)
	Open(ctx context.Context, id string) (*domain.Delivery, string, error)
}

// newRouter builds the health, metrics and listing endpoints.
func newRouter(ctx context.Context, c catalog) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(requestLogger(ctx))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/deliveries", func(r chi.Router) {
		r.Get("/", listDeliveries(c))
		r.Get("/{id}", downloadDelivery(c))
	})

	return r
}

func listDeliveries(c catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deliveries, err := c.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(deliveries))}

		for _, d := range deliveries {
			receipt, err := pb.NewReceipt(d)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}

			list.Values = append(list.Values, structpb.NewStructValue(receipt))
		}

		data, err := protojson.Marshal(list)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	}
}

func downloadDelivery(c catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, path, err := c.Open(r.Context(), chi.URLParam(r, "id"))

		switch {
		case errors.Is(err, repo.ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		case err != nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "audio/wav")
		w.Header().Set("Content-Disposition", `attachment; filename="`+d.FileName+`"`)
		http.ServeFile(w, r, path)
	}
}

func requestLogger(ctx context.Context) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.DebugKV(ctx, "HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"request_id", chimw.GetReqID(r.Context()))
		})
	}
}
