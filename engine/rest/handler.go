package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const MaxRequestSize = 1 << 20 // 1MB

// ApiHandlerFunc is a function that contains endpoint handling logic,
// it fetches necessary resources and returns an error or response model.
type ApiHandlerFunc func(r *Request) (interface{}, error)

// Request is a convenience wrapper around the http request to read path
// variables and bodies.
type Request struct {
	*http.Request
	validate *validator.Validate
}

// ID parses the path variable with the given name as an id.
func (r *Request) ID(name string) (uint64, error) {
	raw := mux.Vars(r.Request)[name]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, NewBadRequestError(fmt.Errorf("invalid %s %q", name, raw))
	}
	return id, nil
}

// Decode reads the JSON body into target and validates it.
func (r *Request) Decode(target interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, MaxRequestSize))
	decoder.DisallowUnknownFields()
	err := decoder.Decode(target)
	if err != nil {
		return NewBadRequestError(fmt.Errorf("invalid request body: %w", err))
	}
	err = r.validate.Struct(target)
	if err != nil {
		return NewBadRequestError(fmt.Errorf("invalid request: %w", err))
	}
	return nil
}

// created marks a response model as a newly created resource.
type created struct {
	model interface{}
}

// accepted marks a response model whose processing is not complete.
type accepted struct {
	model interface{}
}

// Handler is custom http handler implementing custom handler function.
// Handler function allows easier handling of errors and responses as it
// wraps functionality for handling error and responses outside of endpoint handling.
type Handler struct {
	log         zerolog.Logger
	validate    *validator.Validate
	handlerFunc ApiHandlerFunc
}

func NewHandler(log zerolog.Logger, validate *validator.Validate, handlerFunc ApiHandlerFunc) *Handler {
	return &Handler{
		log:         log,
		validate:    validate,
		handlerFunc: handlerFunc,
	}
}

// ServeHTTP function acts as a wrapper to each request providing common handling functionality
// such as logging, error handling, request decorators
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	errLog := h.log.With().
		Str("request_url", r.URL.String()).
		Str("request_id", RequestID(r)).
		Logger()

	response, err := h.handlerFunc(&Request{Request: r, validate: h.validate})
	if err != nil {
		h.errorHandler(w, r, err, errLog)
		return
	}

	switch res := response.(type) {
	case created:
		h.jsonResponse(w, http.StatusCreated, res.model, errLog)
	case accepted:
		h.jsonResponse(w, http.StatusAccepted, res.model, errLog)
	default:
		h.jsonResponse(w, http.StatusOK, response, errLog)
	}
}

func (h *Handler) errorHandler(w http.ResponseWriter, r *http.Request, err error, errorLogger zerolog.Logger) {
	statusErr := errorToStatusError(err)
	if statusErr.Status() == http.StatusInternalServerError {
		errorLogger.Error().Err(err).Msg("internal error")
	} else {
		errorLogger.Debug().Err(err).Int("status", statusErr.Status()).Msg("request failed")
	}
	h.errorResponse(w, statusErr.Status(), statusErr.UserMessage(), RequestID(r), errorLogger)
}

// jsonResponse builds a JSON response and send it to the client
func (h *Handler) jsonResponse(w http.ResponseWriter, code int, response interface{}, errLogger zerolog.Logger) {
	encodedResponse, err := json.Marshal(response)
	if err != nil {
		errLogger.Error().Err(err).Msg("failed to encode response")
		h.errorResponse(w, http.StatusInternalServerError, "error generating response", "", errLogger)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(code)
	_, err = w.Write(encodedResponse)
	if err != nil {
		errLogger.Error().Err(err).Msg("failed to write http response")
	}
}

// errorResponse sends an HTTP error response to the client with the given return code
// and a model error with the given response message in the response body
func (h *Handler) errorResponse(w http.ResponseWriter, returnCode int, responseMessage string, requestID string, logger zerolog.Logger) {
	modelError := ModelError{
		Code:      int32(returnCode),
		Message:   responseMessage,
		RequestID: requestID,
	}
	encodedError, err := json.Marshal(modelError)
	if err != nil {
		logger.Error().Str("response_message", responseMessage).Msg("failed to json encode error message")
		w.WriteHeader(returnCode)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(returnCode)
	_, err = w.Write(encodedError)
	if err != nil {
		logger.Error().Err(err).Msg("failed to send error response")
	}
}
