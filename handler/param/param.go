package param

import (
	"encoding/json"
	"net/http"
	"reflect"

	"ctoken/pkg/number"

	"github.com/go-chi/chi"
	"github.com/gorilla/schema"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.SetAliasTag("json")
	decoder.IgnoreUnknownKeys(true)
	decoder.RegisterConverter(number.Zero, func(s string) reflect.Value {
		v, err := number.Parse(s)
		if err != nil {
			return reflect.Value{}
		}

		return reflect.ValueOf(v)
	})
}

// Binding fills v from the url params, the query and a json body
func Binding(r *http.Request, v interface{}) error {
	values := r.URL.Query()
	if ctx := chi.RouteContext(r.Context()); ctx != nil {
		for i, k := range ctx.URLParams.Keys {
			values.Set(k, ctx.URLParams.Values[i])
		}
	}

	if err := decoder.Decode(v, values); err != nil {
		return err
	}

	if r.Body != nil && r.ContentLength != 0 && r.Method != http.MethodGet {
		return json.NewDecoder(r.Body).Decode(v)
	}

	return nil
}
