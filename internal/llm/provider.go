package llm

import (
    "context"
    "net"
    "net/http"
    "time"

    openai "github.com/sashabaranov/go-openai"
)

// ModelLister is the optional capability used by the configuration check to
// list the models an endpoint serves.
type ModelLister interface {
    ListModels(ctx context.Context) (openai.ModelsList, error)
}

// OpenAIProvider adapts *openai.Client to ModelLister.
type OpenAIProvider struct {
    Inner *openai.Client
}

// NewOpenAIProvider builds a go-openai client for the same endpoint and key
// the completion Client uses.
func NewOpenAIProvider(s Settings, httpClient *http.Client) *OpenAIProvider {
    cfg := openai.DefaultConfig(s.APIKey)
    if s.BaseURL != "" {
        cfg.BaseURL = s.BaseURL
    }
    if httpClient != nil {
        cfg.HTTPClient = httpClient
    }
    return &OpenAIProvider{Inner: openai.NewClientWithConfig(cfg)}
}

func (p *OpenAIProvider) ListModels(ctx context.Context) (openai.ModelsList, error) {
    return p.Inner.ListModels(ctx)
}

// NewHTTPClient returns the transport shared by the completion client and the
// model listing. It carries no overall timeout: the completion client enforces
// its own deadline per request.
func NewHTTPClient() *http.Client {
    transport := &http.Transport{
        Proxy: http.ProxyFromEnvironment,
        DialContext: (&net.Dialer{
            Timeout:   10 * time.Second,
            KeepAlive: 30 * time.Second,
        }).DialContext,
        ForceAttemptHTTP2:     true,
        MaxIdleConnsPerHost:   4, // requests are sequential
        IdleConnTimeout:       90 * time.Second,
        TLSHandshakeTimeout:   10 * time.Second,
        ExpectContinueTimeout: 1 * time.Second,
    }
    return &http.Client{Transport: transport}
}
