// Copyright 2018 The gg Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ghook

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/scholzdev/ghook/internal/typedcontext"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// httpAuthToken, when set, is sent as `Authorization: Bearer <token>`
// on every `http.get`/`http.post` call, per spec.md's auth_token field.
var httpAuthToken string

// doHTTPRequest backs the `http.get`/`http.post` calls a policy script
// makes; it is a package-level func var's worth of indirection short
// of being injectable, which is fine since Run always wants the real
// network here (the evaluator's own Resolver/Importer seams are what
// tests substitute).
func doHTTPRequest(method, url, body string) (typedcontext.HttpResponseData, error) {
	var reqBody io.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return typedcontext.HttpResponseData{}, err
	}
	if httpAuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+httpAuthToken)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return typedcontext.HttpResponseData{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return typedcontext.HttpResponseData{}, err
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}
	return typedcontext.HttpResponseData{
		Status:  resp.StatusCode,
		Body:    string(data),
		Headers: headers,
	}, nil
}
