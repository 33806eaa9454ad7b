package generate

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/seedream-mcp/internal/fal"
)

// ModelVersion selects which SeedDream generation of the model the server
// targets. v4 takes size presets or explicit dimensions; the predecessor v3
// takes aspect-ratio tokens.
type ModelVersion string

const (
	ModelV4 ModelVersion = "v4"
	ModelV3 ModelVersion = "v3"
)

// Bounds for the per-request image count fields.
const (
	MinImages           = 1
	MaxImagesPerRequest = 6
)

// MaxBatchPrompts bounds a single batch call.
const MaxBatchPrompts = 5

// GenerationRequest is the caller-supplied payload for one generate_image call.
// Optional fields left nil take their documented defaults during validation.
type GenerationRequest struct {
	Prompt              string          `json:"prompt"`
	ImageSize           json.RawMessage `json:"image_size,omitempty"`
	AspectRatio         string          `json:"aspect_ratio,omitempty"`
	NumImages           *int            `json:"num_images,omitempty"`
	MaxImages           *int            `json:"max_images,omitempty"`
	Seed                *int64          `json:"seed,omitempty"`
	SyncMode            bool            `json:"sync_mode,omitempty"`
	EnableSafetyChecker *bool           `json:"enable_safety_checker,omitempty"`
}

// BatchRequest is the caller-supplied payload for one generate_image_batch
// call. The size specification applies to every prompt.
type BatchRequest struct {
	Prompts             []string        `json:"prompts"`
	ImageSize           json.RawMessage `json:"image_size,omitempty"`
	AspectRatio         string          `json:"aspect_ratio,omitempty"`
	EnableSafetyChecker *bool           `json:"enable_safety_checker,omitempty"`
}

// DownloadedImage records the local fate of one generated image: either a
// local path or the reason the download failed, always alongside the source
// URL so the caller can retrieve the image manually.
type DownloadedImage struct {
	SourceURL  string
	LocalPath  string
	Dimensions string
	Err        error
}

// PromptResult pairs a batch prompt with its successful generation outcome.
type PromptResult struct {
	Prompt string
	Seed   int64
	Images []DownloadedImage
}

// PromptFailure pairs a batch prompt with the error its generation produced.
type PromptFailure struct {
	Prompt string
	Err    error
}

// BatchOutcome partitions a batch into successes and failures. Both slices
// follow original prompt order internally; cross-partition interleaving is not
// preserved.
type BatchOutcome struct {
	Successful []PromptResult
	Failed     []PromptFailure
}

// Invoker issues a single upstream generation call for one prompt. No local
// retries: one call, one outcome.
type Invoker interface {
	Invoke(ctx context.Context, req *fal.GenerateRequest) (*fal.GenerateResponse, error)
}

// ProgressFunc receives observational progress messages emitted while an
// upstream call is in flight. It must not influence the call's outcome.
type ProgressFunc func(message string)

// Config carries the process-scoped generation settings, constructed once at
// startup and passed in explicitly; handlers never read ambient process state.
type Config struct {
	// APIKey is the FAL credential. May be empty; generation calls then fail
	// with a ConfigError while the rest of the server keeps working.
	APIKey string

	// ModelVersion defaults to ModelV4 when empty.
	ModelVersion ModelVersion

	// OutputDir is where downloaded images land. Defaults to "images".
	OutputDir string
}

// Service implements the two tool operations on top of an Invoker and a
// Downloader. It holds no per-request state; every entity it creates lives and
// dies within a single call.
type Service struct {
	cfg        Config
	invoker    Invoker
	downloader *Downloader
	logger     zerolog.Logger
	progress   ProgressFunc
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithInvoker replaces the FAL-backed invoker, mainly for tests.
func WithInvoker(inv Invoker) ServiceOption {
	return func(s *Service) { s.invoker = inv }
}

// WithDownloader replaces the default downloader.
func WithDownloader(d *Downloader) ServiceOption {
	return func(s *Service) { s.downloader = d }
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// WithProgress attaches a sink for in-flight progress messages.
func WithProgress(fn ProgressFunc) ServiceOption {
	return func(s *Service) { s.progress = fn }
}

// NewService wires a Service from cfg. Unset options fall back to a FAL queue
// client authenticated with cfg.APIKey and a downloader rooted at
// cfg.OutputDir.
func NewService(cfg Config, opts ...ServiceOption) *Service {
	if cfg.ModelVersion == "" {
		cfg.ModelVersion = ModelV4
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "images"
	}

	s := &Service{
		cfg:    cfg,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.invoker == nil {
		client := fal.NewClient(cfg.APIKey, fal.WithLogger(s.logger))
		s.invoker = &falInvoker{client: client, model: modelID(cfg.ModelVersion), service: s}
	}
	if s.downloader == nil {
		s.downloader = NewDownloader(cfg.OutputDir, nil, s.logger)
	}
	return s
}

// ModelVersion returns the active model version.
func (s *Service) ModelVersion() ModelVersion {
	return s.cfg.ModelVersion
}

func modelID(v ModelVersion) string {
	if v == ModelV3 {
		return fal.ModelSeedDreamV3
	}
	return fal.ModelSeedDreamV4
}

// falInvoker adapts the queue client to the Invoker interface, forwarding
// queue log lines to the service's progress sink.
type falInvoker struct {
	client  *fal.Client
	model   string
	service *Service
}

func (f *falInvoker) Invoke(ctx context.Context, req *fal.GenerateRequest) (*fal.GenerateResponse, error) {
	seen := 0
	return f.client.Subscribe(ctx, f.model, req, func(update fal.QueueUpdate) {
		// The status endpoint returns cumulative logs; forward only new lines.
		for ; seen < len(update.Logs); seen++ {
			msg := update.Logs[seen].Message
			f.service.logger.Debug().Str("status", update.Status).Msg(msg)
			if f.service.progress != nil {
				f.service.progress(msg)
			}
		}
	})
}

// settings holds one request's fully resolved parameters.
type settings struct {
	size      Size
	preset    string
	ratio     string
	numImages int
	maxImages int
	seed      *int64
	syncMode  bool
	safety    bool
}

// sizeLabel describes the resolved output size for report text and as the
// fallback dimensions label when neither the API nor the saved file yields
// per-image dimensions.
func (st settings) sizeLabel() string {
	if st.ratio != "" {
		return st.ratio
	}
	if st.preset != "" {
		return st.size.String() + " (" + st.preset + ")"
	}
	return st.size.String()
}

func (s *Service) checkConfigured() error {
	if strings.TrimSpace(s.cfg.APIKey) != "" {
		return nil
	}
	return &ConfigError{Message: "FAL_KEY is not set. Create an API key at https://fal.ai/dashboard/keys and export FAL_KEY=<your key> (or add it to a .env file), then call this tool again."}
}

// resolveSizeSpec resolves the size or ratio parameter appropriate to the
// active model version. Supplying the other version's parameter is rejected so
// callers notice the mismatch instead of having it silently ignored.
func (s *Service) resolveSizeSpec(imageSize json.RawMessage, aspectRatio string) (st settings, err error) {
	switch s.cfg.ModelVersion {
	case ModelV3:
		if len(imageSize) != 0 && string(imageSize) != "null" {
			return st, validationf("image_size is not supported by the v3 model; use aspect_ratio (valid ratios: %s)", strings.Join(AspectRatios(), ", "))
		}
		st.ratio, err = ResolveAspectRatio(strings.TrimSpace(aspectRatio))
		return st, err
	default:
		if strings.TrimSpace(aspectRatio) != "" {
			return st, validationf("aspect_ratio is not supported by the v4 model; use image_size (a preset or explicit width/height)")
		}
		st.size, st.preset, err = ResolveSize(imageSize)
		return st, err
	}
}

// resolveRequest validates req and applies per-field defaults, producing the
// settings used for the upstream call. All failures are ValidationErrors and
// occur before any network traffic.
func (s *Service) resolveRequest(req *GenerationRequest) (settings, error) {
	st, err := s.resolveSizeSpec(req.ImageSize, req.AspectRatio)
	if err != nil {
		return st, err
	}

	st.numImages = MinImages
	if req.NumImages != nil {
		if *req.NumImages < MinImages || *req.NumImages > MaxImagesPerRequest {
			return st, validationf("num_images must be between %d and %d, got %d", MinImages, MaxImagesPerRequest, *req.NumImages)
		}
		st.numImages = *req.NumImages
	}
	st.maxImages = MinImages
	if req.MaxImages != nil {
		if *req.MaxImages < MinImages || *req.MaxImages > MaxImagesPerRequest {
			return st, validationf("max_images must be between %d and %d, got %d", MinImages, MaxImagesPerRequest, *req.MaxImages)
		}
		st.maxImages = *req.MaxImages
	}

	st.seed = req.Seed
	st.syncMode = req.SyncMode
	st.safety = true
	if req.EnableSafetyChecker != nil {
		st.safety = *req.EnableSafetyChecker
	}
	return st, nil
}

// upstreamRequest translates resolved settings into the wire payload.
func (st settings) upstreamRequest(prompt string) *fal.GenerateRequest {
	req := &fal.GenerateRequest{
		Prompt:   prompt,
		SyncMode: st.syncMode,
		Seed:     st.seed,
	}
	if st.ratio != "" {
		req.AspectRatio = st.ratio
	} else {
		req.ImageSize = &fal.ImageSize{Width: st.size.Width, Height: st.size.Height}
		req.MaxImages = st.maxImages
	}
	if st.numImages > 0 {
		req.NumImages = st.numImages
	}
	safety := st.safety
	req.EnableSafetyChecker = &safety
	return req
}

// invoke performs the single upstream call for prompt. A nominally successful
// call that produced zero images is treated as an upstream failure.
func (s *Service) invoke(ctx context.Context, prompt string, st settings) (*fal.GenerateResponse, error) {
	resp, err := s.invoker.Invoke(ctx, st.upstreamRequest(prompt))
	if err != nil {
		return nil, &UpstreamError{Message: "image generation failed", Err: err}
	}
	if len(resp.Images) == 0 {
		return nil, &UpstreamError{Message: "no images produced"}
	}
	return resp, nil
}

// downloadAll persists every image of one generation result, sequentially and
// in image order. A failed download is recorded against its own image and
// never aborts the remaining ones.
func (s *Service) downloadAll(ctx context.Context, prompt string, resp *fal.GenerateResponse, st settings) []DownloadedImage {
	out := make([]DownloadedImage, 0, len(resp.Images))
	for i, img := range resp.Images {
		entry := DownloadedImage{SourceURL: img.URL, Dimensions: st.sizeLabel()}
		if img.Width > 0 && img.Height > 0 {
			entry.Dimensions = Size{Width: img.Width, Height: img.Height}.String()
		}

		path, err := s.downloader.Download(ctx, img.URL, Filename(prompt, i, resp.Seed))
		if err != nil {
			s.logger.Error().Err(err).Str("url", img.URL).Msg("image download failed")
			entry.Err = err
			out = append(out, entry)
			continue
		}
		entry.LocalPath = path

		if img.Width == 0 || img.Height == 0 {
			if dims, err := ProbeDimensions(path); err == nil {
				entry.Dimensions = dims.String()
			}
		}
		out = append(out, entry)
	}
	return out
}

// Generate handles one generate_image call end to end: validate, resolve,
// invoke once, download every image, and compose the report. Any returned
// error belongs to the taxonomy in errors.go and is meant to be reported to
// the caller, never to cross the tool boundary as a fault.
func (s *Service) Generate(ctx context.Context, req *GenerationRequest) (string, error) {
	if err := s.checkConfigured(); err != nil {
		return "", err
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", validationf("prompt is required and must be non-empty text")
	}

	st, err := s.resolveRequest(req)
	if err != nil {
		return "", err
	}

	resp, err := s.invoke(ctx, prompt, st)
	if err != nil {
		return "", err
	}

	images := s.downloadAll(ctx, prompt, resp, st)
	return singleReport(prompt, st, resp.Seed, images), nil
}

// GenerateBatch handles one generate_image_batch call: validate the prompt
// list, resolve size once, fan out one upstream call per prompt concurrently,
// collect every outcome independently, download images for each success, and
// compose the aggregate report.
//
// No prompt's failure cancels or retries a sibling; the errgroup is used
// purely as a join barrier, with every task recording its own outcome and
// returning nil.
func (s *Service) GenerateBatch(ctx context.Context, req *BatchRequest) (string, error) {
	if err := s.checkConfigured(); err != nil {
		return "", err
	}

	if len(req.Prompts) == 0 {
		return "", validationf("prompts must contain at least 1 prompt")
	}
	if len(req.Prompts) > MaxBatchPrompts {
		return "", validationf("prompts must contain at most %d prompts, got %d", MaxBatchPrompts, len(req.Prompts))
	}
	prompts := make([]string, len(req.Prompts))
	for i, p := range req.Prompts {
		prompts[i] = strings.TrimSpace(p)
		if prompts[i] == "" {
			return "", validationf("prompts[%d] must be non-empty text", i)
		}
	}

	st, err := s.resolveSizeSpec(req.ImageSize, req.AspectRatio)
	if err != nil {
		return "", err
	}
	st.numImages = MinImages
	st.maxImages = MinImages
	st.safety = true
	if req.EnableSafetyChecker != nil {
		st.safety = *req.EnableSafetyChecker
	}

	type promptOutcome struct {
		resp *fal.GenerateResponse
		err  error
	}
	outcomes := make([]promptOutcome, len(prompts))

	var g errgroup.Group
	for i, prompt := range prompts {
		i, prompt := i, prompt
		g.Go(func() error {
			resp, err := s.invoke(ctx, prompt, st)
			outcomes[i] = promptOutcome{resp: resp, err: err}
			return nil
		})
	}
	_ = g.Wait() // tasks never return errors; Wait is only the barrier

	var outcome BatchOutcome
	for i, o := range outcomes {
		if o.err != nil {
			outcome.Failed = append(outcome.Failed, PromptFailure{Prompt: prompts[i], Err: o.err})
			continue
		}
		outcome.Successful = append(outcome.Successful, PromptResult{
			Prompt: prompts[i],
			Seed:   o.resp.Seed,
			Images: s.downloadAll(ctx, prompts[i], o.resp, st),
		})
	}

	return batchReport(len(prompts), st, outcome), nil
}
