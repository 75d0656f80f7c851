package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	ServiceXkcd   = "xkcd"
	ServiceVision = "GPT-4-vision"
)

var ErrServiceNotSupported = errors.New("service not supported")

type UnsupportedServiceError struct {
	Service string
}

func (e *UnsupportedServiceError) Error() string {
	return fmt.Sprintf("Service %s is not supported.", e.Service)
}

func (e *UnsupportedServiceError) Is(target error) bool {
	return target == ErrServiceNotSupported
}

// FetchExternalAPIDataResponse carries whatever object the upstream returned.
type FetchExternalAPIDataResponse struct {
	Data    map[string]any `json:"data"`
	Service string         `json:"service"`
	Action  string         `json:"action"`
	Cached  bool           `json:"cached"`
}

func externalBaseUrls() map[string]string {
	return map[string]string{
		ServiceXkcd:   ServiceConfig.External.XkcdBaseUrl,
		ServiceVision: ServiceConfig.External.VisionBaseUrl,
	}
}

func FetchExternalAPIData(ctx context.Context, serviceName string, action string) (*FetchExternalAPIDataResponse, error) {
	base, ok := externalBaseUrls()[serviceName]
	if !ok {
		return nil, &UnsupportedServiceError{Service: serviceName}
	}

	base = strings.TrimRight(base, "/")
	data := map[string]any{}

	var err error

	if serviceName == ServiceXkcd {
		err = doJSON(ctx, http.MethodGet, base+"/"+strings.TrimLeft(action, "/"), nil, &data)
	} else {
		header := http.Header{}
		if key := ServiceConfig.External.VisionApiKey; key != "" {
			header.Set("Authorization", "Bearer "+key)
		}

		err = doJSON(ctx, http.MethodPost, base+"?"+url.Values{"prompt": {action}}.Encode(), header, &data)
	}

	if err != nil {
		return nil, err
	}

	return &FetchExternalAPIDataResponse{
		Data:    data,
		Service: serviceName,
		Action:  action,
		Cached:  false,
	}, nil
}
