package service

import (
	"encoding/json"
	"fmt"
	"sort"

	"google.golang.org/protobuf/types/known/structpb"

	mdwerror "github.com/msto63/formplan/foundation/core/error"
)

// Request is one validation call.
//
// Wire shape: {"form": string, "input": struct, "refs": struct, "locale": string}
type Request struct {
	Form   string
	Input  map[string]any
	Refs   map[string]any
	Locale string
}

// Response is the outcome of a call.
//
// Wire shape: {"ok": true, "values": struct} or
// {"ok": false, "fields": [string], "errors": {key: [string]}}
type Response struct {
	Ok     bool
	Values map[string]any
	Fields []string
	Errors map[string][]string
}

// EncodeRequest converts req to its wire struct
func EncodeRequest(req Request) (*structpb.Struct, error) {
	m := map[string]any{"form": req.Form}
	if req.Locale != "" {
		m["locale"] = req.Locale
	}
	for key, v := range map[string]map[string]any{"input": req.Input, "refs": req.Refs} {
		if v == nil {
			continue
		}
		wire, err := toWire(v)
		if err != nil {
			return nil, invalidMessage(err, key)
		}
		m[key] = wire
	}

	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, invalidMessage(err, "request")
	}
	return s, nil
}

// DecodeRequest reads a request from its wire struct
func DecodeRequest(s *structpb.Struct) (Request, error) {
	var req Request
	fields := s.GetFields()

	form, ok := fields["form"].GetKind().(*structpb.Value_StringValue)
	if !ok || form.StringValue == "" {
		return req, mdwerror.New("request needs a form name").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("service.DecodeRequest")
	}
	req.Form = form.StringValue
	req.Locale = fields["locale"].GetStringValue()

	var err error
	if req.Input, err = structField(fields, "input"); err != nil {
		return req, err
	}
	if req.Refs, err = structField(fields, "refs"); err != nil {
		return req, err
	}
	if req.Input == nil {
		req.Input = map[string]any{}
	}
	return req, nil
}

func structField(fields map[string]*structpb.Value, key string) (map[string]any, error) {
	v, present := fields[key]
	if !present {
		return nil, nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return nil, nil
	case *structpb.Value_StructValue:
		return kind.StructValue.AsMap(), nil
	default:
		return nil, mdwerror.Newf("%s must be an object", key).
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("service.DecodeRequest").
			WithDetail("field", key)
	}
}

// EncodeResponse converts resp to its wire struct. Values are carried in
// their JSON form, so dates become RFC 3339 strings.
func EncodeResponse(resp *Response) (*structpb.Struct, error) {
	m := map[string]any{"ok": resp.Ok}
	if resp.Ok {
		values, err := toWire(resp.Values)
		if err != nil {
			return nil, invalidMessage(err, "values")
		}
		m["values"] = values
	} else {
		fields := make([]any, len(resp.Fields))
		for i, f := range resp.Fields {
			fields[i] = f
		}
		errs := make(map[string]any, len(resp.Errors))
		for key, msgs := range resp.Errors {
			list := make([]any, len(msgs))
			for i, msg := range msgs {
				list[i] = msg
			}
			errs[key] = list
		}
		m["fields"] = fields
		m["errors"] = errs
	}

	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, invalidMessage(err, "response")
	}
	return s, nil
}

// DecodeResponse reads a response from its wire struct
func DecodeResponse(s *structpb.Struct) *Response {
	fields := s.GetFields()
	resp := &Response{Ok: fields["ok"].GetBoolValue()}

	if resp.Ok {
		resp.Values = fields["values"].GetStructValue().AsMap()
		return resp
	}

	resp.Errors = make(map[string][]string)
	for key, v := range fields["errors"].GetStructValue().GetFields() {
		for _, msg := range v.GetListValue().GetValues() {
			resp.Errors[key] = append(resp.Errors[key], msg.GetStringValue())
		}
	}
	for _, f := range fields["fields"].GetListValue().GetValues() {
		resp.Fields = append(resp.Fields, f.GetStringValue())
	}
	if len(resp.Fields) == 0 {
		for key := range resp.Errors {
			resp.Fields = append(resp.Fields, key)
		}
		sort.Strings(resp.Fields)
	}
	return resp
}

// toWire normalizes v to the JSON value space structpb accepts
func toWire(v map[string]any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

func invalidMessage(err error, part string) *mdwerror.Error {
	return mdwerror.Wrap(err, fmt.Sprintf("cannot encode %s", part)).
		WithCode(mdwerror.CodeInvalidInput).
		WithOperation("service.encode").
		WithDetail("part", part)
}
