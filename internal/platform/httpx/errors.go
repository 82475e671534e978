package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for the domain layer. Domain packages wrap these so the
// boundary can map any failure to a status code without knowing the package
// it came from.
var (
	ErrNotFound     = errors.New("não encontrado")
	ErrDuplicate    = errors.New("já existe")
	ErrValidation   = errors.New("dados inválidos")
	ErrUnauthorized = errors.New("não autorizado")
)

type wrapped struct {
	sentinel error
	msg      string
}

func (e *wrapped) Error() string { return e.msg }
func (e *wrapped) Unwrap() error { return e.sentinel }

// Wrap builds a domain error that reads as msg but answers errors.Is for
// the given sentinel.
func Wrap(sentinel error, msg string) error {
	return &wrapped{sentinel: sentinel, msg: msg}
}

// RespondError maps domain errors to the legacy failure envelope. Anything
// unrecognized becomes a 500 with the error text; no handler error ever
// crashes the serving process.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicate):
		Fail(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrValidation):
		Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUnauthorized):
		Fail(w, http.StatusUnauthorized, err.Error())
	default:
		Fail(w, http.StatusInternalServerError, "Erro: "+err.Error())
	}
}
