package graphql

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"

	gqlgen "github.com/99designs/gqlgen/graphql"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/validator"
	"go.uber.org/zap"
)

//go:embed schema.graphqls
var schemaSource string

// Schema is the parsed cart schema.
var Schema = gqlparser.MustLoadSchema(&ast.Source{Name: "schema.graphqls", Input: schemaSource})

// Handler executes GraphQL requests against the cart resolvers.
// Introspection and subscriptions are not served.
type Handler struct {
	resolver *Resolver
	logger   *otelzap.Logger
}

// NewHandler creates a handler for resolver.
func NewHandler(resolver *Resolver, logger *otelzap.Logger) *Handler {
	return &Handler{
		resolver: resolver,
		logger:   logger,
	}
}

// ServeHTTP implements http.Handler for POST requests with a JSON body.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var params gqlgen.RawParams
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&params); err != nil {
		h.write(w, http.StatusBadRequest, errorResponse(gqlerror.Errorf("json request body could not be decoded: %s", err)))
		return
	}

	resp, status := h.Execute(r.Context(), &params)
	h.write(w, status, resp)
}

// Execute validates and runs one operation. The status is 422 when the
// request is rejected before any resolver runs.
func (h *Handler) Execute(ctx context.Context, params *gqlgen.RawParams) (*gqlgen.Response, int) {
	doc, errs := gqlparser.LoadQuery(Schema, params.Query)
	if len(errs) > 0 {
		return &gqlgen.Response{Errors: errs}, http.StatusUnprocessableEntity
	}

	op := doc.Operations.ForName(params.OperationName)
	if op == nil {
		return errorResponse(gqlerror.Errorf("operation %q not found", params.OperationName)), http.StatusUnprocessableEntity
	}
	if op.Operation == ast.Subscription {
		return errorResponse(gqlerror.Errorf("subscriptions are not supported")), http.StatusUnprocessableEntity
	}

	vars, verr := validator.VariableValues(Schema, op, params.Variables)
	if verr != nil {
		return errorResponse(gqlerror.Errorf("%s", verr.Error())), http.StatusUnprocessableEntity
	}

	data := &object{}
	var fieldErrs gqlerror.List
	for _, f := range collectFields(op.SelectionSet) {
		key := responseKey(f)
		value, err := h.resolveRoot(ctx, op.Operation, f, vars)
		if err == nil {
			value, err = project(value, f)
		}
		if err != nil {
			fieldErrs = append(fieldErrs, &gqlerror.Error{
				Message: err.Error(),
				Path:    ast.Path{ast.PathName(key)},
			})
			data.set(key, nil)
			continue
		}
		data.set(key, value)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		h.logger.Ctx(ctx).Error("Failed to encode GraphQL response", zap.Error(err))
		return errorResponse(gqlerror.Errorf("internal error")), http.StatusInternalServerError
	}
	return &gqlgen.Response{Data: raw, Errors: fieldErrs}, http.StatusOK
}

func (h *Handler) resolveRoot(ctx context.Context, op ast.Operation, f *ast.Field, vars map[string]interface{}) (interface{}, error) {
	if f.Name == "__typename" {
		return f.ObjectDefinition.Name, nil
	}
	args := f.ArgumentMap(vars)

	switch op {
	case ast.Query:
		q := h.resolver.Query()
		switch f.Name {
		case "health":
			return q.Health(ctx)
		case "methods":
			return q.Methods(ctx)
		case "cartInfo":
			var input CartContextInput
			if err := decodeArg(args, "input", &input); err != nil {
				return nil, err
			}
			return q.CartInfo(ctx, input)
		}

	case ast.Mutation:
		m := h.resolver.Mutation()
		switch f.Name {
		case "addToCart":
			var (
				orderID  int64
				service  int
				products []*ProductInput
				buyer    *AddressInput
			)
			if err := decodeArgs(args, map[string]interface{}{
				"order_id": &orderID,
				"service":  &service,
				"products": &products,
				"buyer":    &buyer,
			}); err != nil {
				return nil, err
			}
			return m.AddToCart(ctx, orderID, service, products, buyer)
		case "removeFromCart":
			var (
				orderID    int64
				cartItemID *string
			)
			if err := decodeArgs(args, map[string]interface{}{
				"order_id":     &orderID,
				"cart_item_id": &cartItemID,
			}); err != nil {
				return nil, err
			}
			return m.RemoveFromCart(ctx, orderID, cartItemID)
		case "validateCart":
			var payload CartPayloadInput
			if err := decodeArg(args, "payload", &payload); err != nil {
				return nil, err
			}
			return m.ValidateCart(ctx, payload)
		}
	}

	return nil, fmt.Errorf("field %q is not supported", f.Name)
}

func (h *Handler) write(w http.ResponseWriter, status int, resp *gqlgen.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to write GraphQL response", zap.Error(err))
	}
}

func errorResponse(err *gqlerror.Error) *gqlgen.Response {
	return &gqlgen.Response{Errors: gqlerror.List{err}}
}

// ============================================================================
// Arguments and selections
// ============================================================================

func decodeArgs(args map[string]interface{}, dst map[string]interface{}) error {
	for name, ptr := range dst {
		if err := decodeArg(args, name, ptr); err != nil {
			return err
		}
	}
	return nil
}

// decodeArg copies a coerced argument value into dst through its JSON form.
func decodeArg(args map[string]interface{}, name string, dst interface{}) error {
	v, ok := args[name]
	if !ok || v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("argument %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("argument %s: %w", name, err)
	}
	return nil
}

func responseKey(f *ast.Field) string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

func collectFields(set ast.SelectionSet) []*ast.Field {
	var fields []*ast.Field
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			fields = append(fields, s)
		case *ast.InlineFragment:
			fields = append(fields, collectFields(s.SelectionSet)...)
		case *ast.FragmentSpread:
			if s.Definition != nil {
				fields = append(fields, collectFields(s.Definition.SelectionSet)...)
			}
		}
	}
	return fields
}

// project keeps only the selected fields of a resolved value.
func project(value interface{}, f *ast.Field) (interface{}, error) {
	if len(f.SelectionSet) == 0 || value == nil {
		return value, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic interface{}
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}
	return shape(generic, f.SelectionSet, f.Definition.Type.Name()), nil
}

func shape(v interface{}, set ast.SelectionSet, typeName string) interface{} {
	switch t := v.(type) {
	case []interface{}:
		out := make([]interface{}, len(t))
		for i := range t {
			out[i] = shape(t[i], set, typeName)
		}
		return out
	case map[string]interface{}:
		obj := &object{}
		for _, f := range collectFields(set) {
			key := responseKey(f)
			if f.Name == "__typename" {
				obj.set(key, typeName)
				continue
			}
			child := t[f.Name]
			if len(f.SelectionSet) > 0 && child != nil {
				child = shape(child, f.SelectionSet, f.Definition.Type.Name())
			}
			obj.set(key, child)
		}
		return obj
	default:
		return v
	}
}

// object is a JSON object that keeps the order of the selection.
type object struct {
	keys   []string
	values map[string]interface{}
}

func (o *object) set(key string, v interface{}) {
	if o.values == nil {
		o.values = make(map[string]interface{})
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// MarshalJSON implements json.Marshaler.
func (o *object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(o.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
