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

package typedcontext

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/scholzdev/ghook/internal/value"
)

// HttpResponseData backs the HttpResponse variant.
type HttpResponseData struct {
	Status  int
	Body    string
	Headers map[string]string
}

func NewHttpResponse(d HttpResponseData) *value.Object {
	obj := value.NewObject("HttpResponse")
	obj.Context = httpResponseContext{d}
	return obj
}

type httpResponseContext struct{ d HttpResponseData }

func (h httpResponseContext) CallProperty(name string) (value.Value, bool) {
	switch name {
	case "status":
		return value.Num(float64(h.d.Status)), true
	case "body":
		return value.Str(h.d.Body), true
	case "ok":
		return value.Bool(h.d.Status >= 200 && h.d.Status < 300), true
	}
	return nil, false
}

func (h httpResponseContext) CallMethod(name string, args []value.Value) (value.Value, bool, error) {
	switch name {
	case "header":
		key, err := oneStringArg(args)
		if err != nil {
			return nil, true, err
		}
		for k, v := range h.d.Headers {
			if strings.EqualFold(k, key) {
				return value.Str(v), true, nil
			}
		}
		return value.Null{}, true, nil
	case "json":
		var raw interface{}
		if err := json.Unmarshal([]byte(h.d.Body), &raw); err != nil {
			return nil, true, err
		}
		return jsonToValue(raw), true, nil
	}
	return nil, false, nil
}

// HttpContext exposes the get/post surface used by scenario S8. spec.md
// and its expansion describe only HttpResponse's shape (status, body,
// ok, json(), header(name)) and leave the request side implicit; get
// and post here are the minimal pair needed to produce an HttpResponse,
// matching how the resolver's own fetches work (method, URL, optional
// body).
//
// GetFn and PostFn are injected, not dialed directly with net/http,
// keeping this package free of a transport dependency: the evaluator
// wires in the resolver's HTTP client when it builds the Http object.
type HttpContext struct {
	GetFn  func(url string) (HttpResponseData, error)
	PostFn func(url, body string) (HttpResponseData, error)
}

func NewHttp(getFn func(url string) (HttpResponseData, error), postFn func(url, body string) (HttpResponseData, error)) *value.Object {
	obj := value.NewObject("Http")
	obj.Context = HttpContext{GetFn: getFn, PostFn: postFn}
	return obj
}

func (HttpContext) CallProperty(string) (value.Value, bool) { return nil, false }

func (h HttpContext) CallMethod(name string, args []value.Value) (value.Value, bool, error) {
	switch name {
	case "get":
		url, err := oneStringArg(args)
		if err != nil {
			return nil, true, err
		}
		if h.GetFn == nil {
			return nil, true, errors.New("http.get is not available in this context")
		}
		resp, err := h.GetFn(url)
		if err != nil {
			return nil, true, err
		}
		return NewHttpResponse(resp), true, nil
	case "post":
		url, body, err := twoStringArgs(args)
		if err != nil {
			return nil, true, err
		}
		if h.PostFn == nil {
			return nil, true, errors.New("http.post is not available in this context")
		}
		resp, err := h.PostFn(url, body)
		if err != nil {
			return nil, true, err
		}
		return NewHttpResponse(resp), true, nil
	}
	return nil, false, nil
}

// NewJsonObject wraps a decoded JSON object's fields as both an Object's
// plain property map (for "." and "[...]" access by the evaluator) and a
// small Context adding keys()/has(key), grounded on the teacher's
// pattern of pairing a data struct with accessor methods.
func NewJsonObject(fields map[string]value.Value) *value.Object {
	obj := value.NewObject("Json")
	obj.Properties = fields
	obj.Context = jsonContext{fields}
	return obj
}

type jsonContext struct{ m map[string]value.Value }

func (jsonContext) CallProperty(string) (value.Value, bool) { return nil, false }

func (j jsonContext) CallMethod(name string, args []value.Value) (value.Value, bool, error) {
	switch name {
	case "keys":
		keys := maps.Keys(j.m)
		sort.Strings(keys)
		out := make(value.Array, len(keys))
		for i, k := range keys {
			out[i] = value.Str(k)
		}
		return out, true, nil
	case "has":
		key, err := oneStringArg(args)
		if err != nil {
			return nil, true, err
		}
		_, ok := j.m[key]
		return value.Bool(ok), true, nil
	}
	return nil, false, nil
}

// jsonToValue converts the result of encoding/json's default decode
// (map[string]interface{}, []interface{}, float64, string, bool, nil)
// into the Value tagged union.
func jsonToValue(raw interface{}) value.Value {
	switch v := raw.(type) {
	case nil:
		return value.Null{}
	case bool:
		return value.Bool(v)
	case float64:
		return value.Num(v)
	case string:
		return value.Str(v)
	case []interface{}:
		out := make(value.Array, len(v))
		for i, elem := range v {
			out[i] = jsonToValue(elem)
		}
		return out
	case map[string]interface{}:
		fields := make(map[string]value.Value, len(v))
		for k, elem := range v {
			fields[k] = jsonToValue(elem)
		}
		return NewJsonObject(fields)
	}
	return value.Null{}
}
