package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gst-shop-api/internal/domain/ledger"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// los errores reportan el nombre JSON del campo
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseBody decodifica el JSON del cuerpo y aplica las reglas validate:"...".
// Un cuerpo ilegible devuelve errBadBody; una regla incumplida, *ledger.ValidationError.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return errBadBody
	}
	return validateStruct(out)
}

var errBadBody = errors.New("cuerpo inválido")

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		fe := ves[0]
		// Namespace empieza con el nombre del struct raíz: "CreateBillRequest.items[0].product_id"
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		return &ledger.ValidationError{Field: field, Reason: reason(fe)}
	}
	return &ledger.ValidationError{Reason: err.Error()}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "email":
		return "email inválido"
	case "min":
		return "mínimo " + fe.Param()
	case "max":
		return "máximo " + fe.Param()
	case "len":
		return "longitud debe ser " + fe.Param()
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	case "numeric":
		return "debe ser numérico"
	}
	return "no cumple " + fe.Tag()
}

// bind combina parseBody con la respuesta de error adecuada. Devuelve false si ya respondió.
func bind(c *fiber.Ctx, out any) (bool, error) {
	err := parseBody(c, out)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errBadBody):
		return false, badBody(c)
	default:
		return false, writeError(c, err)
	}
}
