package preview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/barisgit/apigen/internal/typegen/decl"
	"github.com/barisgit/apigen/internal/typegen/generator"
	"github.com/barisgit/apigen/internal/typegen/params"
	"github.com/barisgit/apigen/internal/typegen/schema"
	"github.com/barisgit/apigen/internal/typegen/synth"
)

// Snapshot is one generation run served by the preview.
type Snapshot struct {
	Document *schema.Document
	Result   *generator.Result
	Synth    *synth.Synthesizer
	Built    time.Time
}

// Server serves the latest snapshot. Update may be called concurrently with
// requests.
type Server struct {
	mu       sync.RWMutex
	snapshot *Snapshot
	lastErr  error
}

// NewServer creates an empty server.
func NewServer() *Server {
	return &Server{}
}

// Update replaces the served snapshot.
func (s *Server) Update(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
	s.lastErr = nil
}

// Fail records a failed run. The previous snapshot stays available.
func (s *Server) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
}

func (s *Server) current() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		if s.lastErr != nil {
			return nil, huma.Error503ServiceUnavailable("generation failed", s.lastErr)
		}
		return nil, huma.Error503ServiceUnavailable("no generation result yet")
	}
	return s.snapshot, nil
}

type StatusOutput struct {
	Body struct {
		Title   string    `json:"title,omitempty"`
		Version string    `json:"version,omitempty"`
		Files   int       `json:"files"`
		Built   time.Time `json:"built"`
		Error   string    `json:"error,omitempty"`
	}
}

type FilesOutput struct {
	Body struct {
		Files []string `json:"files"`
	}
}

type FileInput struct {
	Path string `query:"path" required:"true" doc:"Output path, e.g. Schemas/Widget.swift"`
}

type FileOutput struct {
	Body struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
}

type SchemaInput struct {
	Name string `path:"name" doc:"Component schema name"`
}

type SchemaOutput struct {
	Body struct {
		Name  string         `json:"name"`
		Decls []decl.Outline `json:"decls"`
	}
}

type QueryInput struct {
	Body struct {
		Path   string              `json:"path" doc:"Endpoint path template"`
		Values map[string][]string `json:"values" doc:"Values by raw parameter key"`
	}
}

type QueryOutput struct {
	Body struct {
		Query string   `json:"query"`
		Items []string `json:"items"`
	}
}

// Register adds the preview operations to api.
func Register(api huma.API, s *Server) {
	addHealthCheck(api, s)

	huma.Register(api, huma.Operation{
		OperationID: "get-status",
		Method:      http.MethodGet,
		Path:        "/status",
		Summary:     "Generation status",
	}, func(ctx context.Context, input *struct{}) (*StatusOutput, error) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		out := &StatusOutput{}
		if s.snapshot != nil {
			out.Body.Title = s.snapshot.Document.Title
			out.Body.Version = s.snapshot.Document.Version
			out.Body.Files = len(s.snapshot.Result.Files)
			out.Body.Built = s.snapshot.Built
		}
		if s.lastErr != nil {
			out.Body.Error = s.lastErr.Error()
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-files",
		Method:      http.MethodGet,
		Path:        "/files",
		Summary:     "List generated files",
	}, func(ctx context.Context, input *struct{}) (*FilesOutput, error) {
		snap, err := s.current()
		if err != nil {
			return nil, err
		}
		out := &FilesOutput{}
		out.Body.Files = snap.Result.Paths()
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-file",
		Method:      http.MethodGet,
		Path:        "/file",
		Summary:     "Fetch a generated file",
	}, func(ctx context.Context, input *FileInput) (*FileOutput, error) {
		snap, err := s.current()
		if err != nil {
			return nil, err
		}
		content, ok := snap.Result.Files[input.Path]
		if !ok {
			return nil, huma.Error404NotFound(fmt.Sprintf("no generated file '%s'", input.Path))
		}
		out := &FileOutput{}
		out.Body.Path = input.Path
		out.Body.Content = content
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-schema",
		Method:      http.MethodGet,
		Path:        "/schemas/{name}",
		Summary:     "Outline the declarations of a schema",
	}, func(ctx context.Context, input *SchemaInput) (*SchemaOutput, error) {
		snap, err := s.current()
		if err != nil {
			return nil, err
		}
		if _, ok := snap.Document.Schemas[input.Name]; !ok {
			return nil, huma.Error404NotFound(fmt.Sprintf("no schema '%s'", input.Name))
		}
		decls, err := snap.Synth.Schema(input.Name)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		out := &SchemaOutput{}
		out.Body.Name = input.Name
		out.Body.Decls = decl.Outlines(decls)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "encode-query",
		Method:      http.MethodPost,
		Path:        "/query",
		Summary:     "Encode GET query parameters the way generated code does",
	}, func(ctx context.Context, input *QueryInput) (*QueryOutput, error) {
		snap, err := s.current()
		if err != nil {
			return nil, err
		}
		ep, ok := snap.Document.Endpoints[input.Body.Path]
		if !ok || ep.Get == nil {
			return nil, huma.Error404NotFound(fmt.Sprintf("no GET operation for '%s'", input.Body.Path))
		}
		groups, err := params.GroupParameters(ep.Get.QueryParameters())
		if err != nil {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}

		p := params.New(groups)
		keys := make([]string, 0, len(input.Body.Values))
		for k := range input.Body.Values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := p.SetStrings(k, input.Body.Values[k]...); err != nil {
				return nil, huma.Error400BadRequest(err.Error())
			}
		}

		out := &QueryOutput{}
		out.Body.Query = p.Encode()
		out.Body.Items = []string{}
		for _, item := range p.QueryItems() {
			out.Body.Items = append(out.Body.Items, item.String())
		}
		return out, nil
	})
}

func (s *Server) newAPI(mux *http.ServeMux) huma.API {
	api := humago.New(mux, huma.DefaultConfig("apigen preview", generator.Version))
	Register(api, s)
	return api
}

// Handler returns an HTTP handler serving the preview API and its docs.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.newAPI(mux)
	return mux
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("preview server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
