package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/onflow/flow-attestation/model/attestation"
	"github.com/onflow/flow-attestation/module"
)

// Consensus is the part of the consensus authenticator exposed over HTTP.
type Consensus interface {
	SubmitResponse(ctx context.Context, taskID uint64, task *attestation.Task, sig []byte, outcome bool, score uint8, voter common.Address) (*attestation.ConsensusStatus, error)
	ManualOverride(ctx context.Context, taskID uint64, outcome bool, admin common.Address) (*attestation.ConsensusStatus, error)
	GetStatus(taskID uint64) (*attestation.ConsensusStatus, error)
	Responses(taskID uint64) ([]*attestation.Response, error)
}

// Lifecycle is the part of the item state machine exposed over HTTP.
type Lifecycle interface {
	RegisterItem(owner common.Address, contentHash attestation.Digest, auxHash attestation.Digest, category uint8, metadataRef string) (*attestation.Item, error)
	RequestAuthentication(ctx context.Context, itemID uint64, requester common.Address) (uint64, error)
	Item(itemID uint64) (*attestation.Item, error)
	ItemByTask(taskID uint64) (*attestation.Item, error)
}

// API bundles the backends served by the REST API.
type API struct {
	Registry  module.TaskRegistry
	Consensus Consensus
	Lifecycle Lifecycle
}

type route struct {
	Name    string
	Method  string
	Pattern string
	Handler func(api API) ApiHandlerFunc
}

var routes = []route{{
	Method:  http.MethodPost,
	Pattern: "/tasks",
	Name:    "createTask",
	Handler: createTask,
}, {
	Method:  http.MethodGet,
	Pattern: "/tasks/{id}",
	Name:    "getTask",
	Handler: getTask,
}, {
	Method:  http.MethodGet,
	Pattern: "/tasks/{id}/status",
	Name:    "getStatus",
	Handler: getStatus,
}, {
	Method:  http.MethodGet,
	Pattern: "/tasks/{id}/responses",
	Name:    "getResponses",
	Handler: getResponses,
}, {
	Method:  http.MethodPost,
	Pattern: "/tasks/{id}/responses",
	Name:    "submitResponse",
	Handler: submitResponse,
}, {
	Method:  http.MethodPost,
	Pattern: "/tasks/{id}/override",
	Name:    "manualOverride",
	Handler: manualOverride,
}, {
	Method:  http.MethodGet,
	Pattern: "/tasks/{id}/item",
	Name:    "getItemByTask",
	Handler: getItemByTask,
}, {
	Method:  http.MethodPost,
	Pattern: "/items",
	Name:    "registerItem",
	Handler: registerItem,
}, {
	Method:  http.MethodGet,
	Pattern: "/items/{id}",
	Name:    "getItem",
	Handler: getItem,
}, {
	Method:  http.MethodPost,
	Pattern: "/items/{id}/authentication",
	Name:    "requestAuthentication",
	Handler: requestAuthentication,
}}

func createTask(api API) ApiHandlerFunc {
	return func(r *Request) (interface{}, error) {
		var req CreateTaskRequest
		err := r.Decode(&req)
		if err != nil {
			return nil, err
		}
		task, err := api.Registry.CreateTask(req.ContentHash, req.AuxHash, req.Category, req.Creator)
		if err != nil {
			return nil, err
		}
		return created{task}, nil
	}
}

func getTask(api API) ApiHandlerFunc {
	return func(r *Request) (interface{}, error) {
		taskID, err := r.ID("id")
		if err != nil {
			return nil, err
		}
		return api.Registry.GetTask(taskID)
	}
}

func getStatus(api API) ApiHandlerFunc {
	return func(r *Request) (interface{}, error) {
		taskID, err := r.ID("id")
		if err != nil {
			return nil, err
		}
		return api.Consensus.GetStatus(taskID)
	}
}

func getResponses(api API) ApiHandlerFunc {
	return func(r *Request) (interface{}, error) {
		taskID, err := r.ID("id")
		if err != nil {
			return nil, err
		}
		// unknown tasks are reported as such rather than as an empty list
		_, err = api.Registry.GetTask(taskID)
		if err != nil {
			return nil, err
		}
		responses, err := api.Consensus.Responses(taskID)
		if err != nil {
			return nil, err
		}
		if responses == nil {
			responses = []*attestation.Response{}
		}
		return responses, nil
	}
}

func submitResponse(api API) ApiHandlerFunc {
	return func(r *Request) (interface{}, error) {
		taskID, err := r.ID("id")
		if err != nil {
			return nil, err
		}
		var req SubmitResponseRequest
		err = r.Decode(&req)
		if err != nil {
			return nil, err
		}

		status, err := api.Consensus.SubmitResponse(r.Context(), taskID, &req.Task, req.Signature, req.Outcome, req.Score, req.Voter)
		if attestation.IsDownstreamApplyFailedError(err) && status != nil {
			return accepted{VoteResult{Status: status, ApplyError: err.Error()}}, nil
		}
		if err != nil {
			return nil, err
		}
		return VoteResult{Status: status}, nil
	}
}

func manualOverride(api API) ApiHandlerFunc {
	return func(r *Request) (interface{}, error) {
		taskID, err := r.ID("id")
		if err != nil {
			return nil, err
		}
		var req ManualOverrideRequest
		err = r.Decode(&req)
		if err != nil {
			return nil, err
		}

		status, err := api.Consensus.ManualOverride(r.Context(), taskID, req.Outcome, req.Admin)
		if attestation.IsDownstreamApplyFailedError(err) && status != nil {
			return accepted{VoteResult{Status: status, ApplyError: err.Error()}}, nil
		}
		if err != nil {
			return nil, err
		}
		return VoteResult{Status: status}, nil
	}
}

func getItemByTask(api API) ApiHandlerFunc {
	return func(r *Request) (interface{}, error) {
		taskID, err := r.ID("id")
		if err != nil {
			return nil, err
		}
		item, err := api.Lifecycle.ItemByTask(taskID)
		if attestation.IsUnmappedTaskError(err) {
			return nil, NewRestError(http.StatusNotFound, fmt.Sprintf("no item requested task %d", taskID), err)
		}
		return item, err
	}
}

func registerItem(api API) ApiHandlerFunc {
	return func(r *Request) (interface{}, error) {
		var req RegisterItemRequest
		err := r.Decode(&req)
		if err != nil {
			return nil, err
		}
		item, err := api.Lifecycle.RegisterItem(req.Owner, req.ContentHash, req.AuxHash, req.Category, req.MetadataRef)
		if err != nil {
			return nil, err
		}
		return created{item}, nil
	}
}

func getItem(api API) ApiHandlerFunc {
	return func(r *Request) (interface{}, error) {
		itemID, err := r.ID("id")
		if err != nil {
			return nil, err
		}
		return api.Lifecycle.Item(itemID)
	}
}

func requestAuthentication(api API) ApiHandlerFunc {
	return func(r *Request) (interface{}, error) {
		itemID, err := r.ID("id")
		if err != nil {
			return nil, err
		}
		var req RequestAuthenticationRequest
		err = r.Decode(&req)
		if err != nil {
			return nil, err
		}
		taskID, err := api.Lifecycle.RequestAuthentication(r.Context(), itemID, req.Requester)
		if err != nil {
			return nil, err
		}
		return created{AuthenticationRequested{ItemID: itemID, TaskID: taskID}}, nil
	}
}
