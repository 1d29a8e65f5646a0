package webclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/raysh454/ziva/internal/logging"
)

// ChromeDPClient renders pages in a headless Chrome so that listings built
// by client-side scripts can be read. Only GET is supported.
type ChromeDPClient struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	idleAfter   time.Duration
	logger      logging.Logger
}

var _ WebClient = (*ChromeDPClient)(nil)

// NewChromedpClient starts a browser allocator. Tabs are created per request.
func NewChromedpClient(cfg Config, logger logging.Logger) (*ChromeDPClient, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	idleAfter := cfg.IdleAfter
	if idleAfter <= 0 {
		idleAfter = 2 * time.Second
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(userAgent),
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if cfg.ShowBrowser {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	componentLogger := logger.With(logging.Field{Key: "backend", Value: "chromedp"})
	componentLogger.Debug("created chromedp webclient",
		logging.Field{Key: "idle_after", Value: idleAfter.String()})

	return &ChromeDPClient{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		idleAfter:   idleAfter,
		logger:      componentLogger,
	}, nil
}

// waitNetworkIdle signals once no request has been in flight for idleAfter.
func waitNetworkIdle(ctx context.Context, idleAfter time.Duration) <-chan struct{} {
	idleChan := make(chan struct{})
	var activeReqs int32
	var timer *time.Timer
	var timerMutex sync.Mutex
	var once sync.Once

	startTimer := func() {
		timerMutex.Lock()
		defer timerMutex.Unlock()

		if timer != nil {
			timer.Stop()
		}

		timer = time.AfterFunc(idleAfter, func() {
			if atomic.LoadInt32(&activeReqs) <= 0 {
				once.Do(func() { close(idleChan) })
			}
		})
	}

	chromedp.ListenTarget(ctx, func(ev any) {
		switch ev.(type) {
		case *network.EventRequestWillBeSent:
			atomic.AddInt32(&activeReqs, 1)
		case *network.EventLoadingFinished, *network.EventLoadingFailed:
			if atomic.AddInt32(&activeReqs, -1) <= 0 {
				startTimer()
			}
		}
	})

	return idleChan
}

func (cdc *ChromeDPClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if m := strings.ToUpper(req.Method); m != "" && m != http.MethodGet {
		return nil, fmt.Errorf("chromedp: method %s not supported", m)
	}

	tabCtx, cancel := chromedp.NewContext(cdc.allocCtx)
	defer cancel()

	// The tab hangs off the allocator, so the caller's deadline is bridged in.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	idle := waitNetworkIdle(tabCtx, cdc.idleAfter)

	actions := []chromedp.Action{network.Enable()}
	if len(req.Headers) > 0 {
		extra := network.Headers{}
		for k := range req.Headers {
			extra[k] = req.Headers.Get(k)
		}
		actions = append(actions, network.SetExtraHTTPHeaders(extra))
	}
	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return nil, fmt.Errorf("chromedp: prepare tab: %w", err)
	}

	cdc.logger.Debug("navigating", logging.Field{Key: "url", Value: req.URL})
	navResp, err := chromedp.RunResponse(tabCtx, chromedp.Navigate(req.URL))
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("chromedp: navigate: %w", ctx.Err())
		}
		return nil, fmt.Errorf("chromedp: navigate: %w", err)
	}

	select {
	case <-idle:
	case <-time.After(5 * cdc.idleAfter):
		cdc.logger.Debug("network never went idle", logging.Field{Key: "url", Value: req.URL})
	case <-ctx.Done():
		return nil, fmt.Errorf("chromedp: wait idle: %w", ctx.Err())
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html)); err != nil {
		return nil, fmt.Errorf("chromedp: read document: %w", err)
	}

	out := &Response{
		Request:    req,
		Body:       []byte(html),
		Headers:    http.Header{},
		StatusCode: http.StatusOK,
		FetchedAt:  time.Now(),
	}
	if navResp != nil {
		out.StatusCode = int(navResp.Status)
		for k, v := range navResp.Headers {
			out.Headers.Set(k, fmt.Sprint(v))
		}
	}
	return out, nil
}

func (cdc *ChromeDPClient) Get(ctx context.Context, url string) (*Response, error) {
	return cdc.Do(ctx, &Request{Method: http.MethodGet, URL: url})
}

func (cdc *ChromeDPClient) Close() error {
	cdc.allocCancel()
	return nil
}
