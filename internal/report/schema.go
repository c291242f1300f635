package report

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed result.schema.json
var resultSchema []byte

var resultSchemaLoader = gojsonschema.NewBytesLoader(resultSchema)

// ValidateResult checks an encoded result against the Allure result schema.
func ValidateResult(data []byte) error {
	res, err := gojsonschema.Validate(resultSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validate result: %w", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("invalid result: %s", strings.Join(msgs, "; "))
}
