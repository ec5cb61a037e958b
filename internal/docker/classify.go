package docker

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ryanmoran/dockline/internal/stream"
)

// The classifiers below run once per request, after the transfer has
// finished. Each checks its operation's success code first; only there is an
// extracted id trusted. Every other code is an error, and the daemon's own
// message is preferred to a generic one whenever the body carried one.

func failure(op Op, kind Kind, status int, id string, state stream.State) *Error {
	return &Error{
		Op:         op,
		Kind:       kind,
		StatusCode: status,
		ID:         id,
		Message:    state.ErrorMessage,
	}
}

func bodyFailure(op Op, kind Kind, status int, id string, decoder *stream.AccumulatingDecoder) *Error {
	err := failure(op, kind, status, id, decoder.State())
	err.Body = decoder.String()
	return err
}

func classifyCreateContainer(status int, state stream.State, name string) (string, error) {
	if status == http.StatusCreated && state.HasResourceID() {
		return state.ResourceID, nil
	}
	return "", failure(OpCreateContainer, KindFailed, status, name, state)
}

func classifyStartContainer(status int, state stream.State, id string) error {
	if status == http.StatusNoContent {
		return nil
	}
	return failure(OpStartContainer, KindFailed, status, id, state)
}

func classifyStopContainer(status int, state stream.State, id string) error {
	switch status {
	case http.StatusNoContent, http.StatusNotModified:
		return nil
	case http.StatusNotFound:
		return failure(OpStopContainer, KindNotFound, status, id, state)
	default:
		return failure(OpStopContainer, KindFailed, status, id, state)
	}
}

func classifyKillContainer(status int, state stream.State, id string) error {
	if status == http.StatusNoContent {
		return nil
	}
	return failure(OpKillContainer, KindFailed, status, id, state)
}

func classifyRemoveContainer(status int, decoder *stream.AccumulatingDecoder, id string) error {
	switch status {
	case http.StatusNoContent:
		return nil
	case http.StatusBadRequest:
		return bodyFailure(OpRemoveContainer, KindBadParameter, status, id, decoder)
	case http.StatusNotFound:
		return bodyFailure(OpRemoveContainer, KindNotFound, status, id, decoder)
	case http.StatusConflict:
		return bodyFailure(OpRemoveContainer, KindConflict, status, id, decoder)
	case http.StatusInternalServerError:
		return bodyFailure(OpRemoveContainer, KindServer, status, id, decoder)
	default:
		return failure(OpRemoveContainer, KindUnknown, status, id, decoder.State())
	}
}

func classifyInspectContainer(status int, decoder *stream.AccumulatingDecoder, id string) (ContainerInspection, error) {
	switch status {
	case http.StatusOK:
		var inspection ContainerInspection
		if err := json.Unmarshal(decoder.Body(), &inspection); err != nil {
			return ContainerInspection{}, fmt.Errorf("failed to decode inspection of container %q: %w\nThe daemon returned malformed JSON", id, err)
		}
		return inspection, nil
	case http.StatusNotFound:
		return ContainerInspection{}, failure(OpInspectContainer, KindNotFound, status, id, decoder.State())
	default:
		return ContainerInspection{}, failure(OpInspectContainer, KindFailed, status, id, decoder.State())
	}
}

func classifyWaitContainer(status int, decoder *stream.AccumulatingDecoder, id string) (WaitResult, error) {
	switch status {
	case http.StatusOK:
		var result WaitResult
		if err := json.Unmarshal(decoder.Body(), &result); err != nil {
			return WaitResult{}, fmt.Errorf("failed to decode exit status of container %q: %w\nThe daemon returned malformed JSON", id, err)
		}
		return result, nil
	case http.StatusNotFound:
		return WaitResult{}, failure(OpWaitContainer, KindNotFound, status, id, decoder.State())
	default:
		return WaitResult{}, failure(OpWaitContainer, KindDaemon, status, id, decoder.State())
	}
}

// classifyContainerStream covers the endpoints whose success body is raw
// output for the sink: attach, logs and resize.
func classifyContainerStream(op Op, status int, state stream.State, id string) error {
	switch status {
	case http.StatusOK, http.StatusSwitchingProtocols:
		return nil
	case http.StatusNotFound:
		return failure(op, KindNotFound, status, id, state)
	default:
		return failure(op, KindDaemon, status, id, state)
	}
}

func classifyBuildImage(status int, state stream.State, tag string) (string, error) {
	if status == http.StatusOK && state.HasAuxiliaryID() {
		return state.AuxiliaryID, nil
	}
	return "", failure(OpBuildImage, KindFailed, status, tag, state)
}

// classifyPullImage trusts a 200 even when the stream reported an error: the
// daemon has already committed to the status code before it starts pulling.
// The stream's message is handed back so the caller can surface it.
func classifyPullImage(status int, state stream.State, ref string) (string, error) {
	if status == http.StatusOK {
		return state.ErrorMessage, nil
	}
	return "", failure(OpPullImage, KindFailed, status, ref, state)
}

func classifyRemoveImage(status int, decoder *stream.AccumulatingDecoder, ref string) ([]ImageDeleteItem, error) {
	if status != http.StatusOK {
		return nil, failure(OpRemoveImage, KindFailed, status, ref, decoder.State())
	}

	var items []ImageDeleteItem
	if len(decoder.Body()) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(decoder.Body(), &items); err != nil {
		return nil, fmt.Errorf("failed to decode removal report for image %q: %w\nThe daemon returned malformed JSON", ref, err)
	}
	return items, nil
}

func classifyPruneImages(status int, decoder *stream.AccumulatingDecoder) (PruneReport, error) {
	if status != http.StatusOK {
		return PruneReport{}, failure(OpPruneImages, KindFailed, status, "", decoder.State())
	}

	var report PruneReport
	if err := json.Unmarshal(decoder.Body(), &report); err != nil {
		return PruneReport{}, fmt.Errorf("failed to decode prune report: %w\nThe daemon returned malformed JSON", err)
	}
	return report, nil
}

func classifyCreateNetwork(status int, state stream.State, name string) (string, error) {
	switch status {
	case http.StatusCreated:
		if state.HasResourceID() {
			return state.ResourceID, nil
		}
		return "", failure(OpCreateNetwork, KindFailed, status, name, state)
	case http.StatusConflict:
		return "", failure(OpCreateNetwork, KindAlreadyExists, status, name, state)
	default:
		return "", failure(OpCreateNetwork, KindFailed, status, name, state)
	}
}

func classifyConnectNetwork(status int, decoder *stream.AccumulatingDecoder, networkID, containerID string) error {
	var kind Kind
	switch status {
	case http.StatusOK:
		return nil
	case http.StatusForbidden:
		kind = KindNotSupported
	case http.StatusNotFound:
		kind = KindNotFound
	case http.StatusInternalServerError:
		kind = KindServer
	default:
		kind = KindUnknown
	}

	err := bodyFailure(OpConnectNetwork, kind, status, networkID, decoder)
	err.Container = containerID
	return err
}

func classifyRemoveNetwork(status int, decoder *stream.AccumulatingDecoder, id string) error {
	if status == http.StatusNoContent {
		return nil
	}
	return failure(OpRemoveNetwork, KindFailed, status, id, decoder.State())
}

func classifyInspectNetwork(status int, decoder *stream.AccumulatingDecoder, id string) (NetworkInspection, error) {
	switch status {
	case http.StatusOK:
		var inspection NetworkInspection
		if err := json.Unmarshal(decoder.Body(), &inspection); err != nil {
			return NetworkInspection{}, fmt.Errorf("failed to decode inspection of network %q: %w\nThe daemon returned malformed JSON", id, err)
		}
		return inspection, nil
	case http.StatusNotFound:
		return NetworkInspection{}, failure(OpInspectNetwork, KindNotFound, status, id, decoder.State())
	default:
		return NetworkInspection{}, failure(OpInspectNetwork, KindFailed, status, id, decoder.State())
	}
}

func classifyPing(status int, decoder *stream.AccumulatingDecoder) error {
	if status == http.StatusOK {
		return nil
	}
	return bodyFailure(OpPing, KindDaemon, status, "", decoder)
}
