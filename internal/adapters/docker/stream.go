package docker

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/docker/docker/pkg/jsonmessage"

	"github.com/melih/dockship/internal/core/domain"
)

// streamMessages decodes a build stream, hands every output line to emit and
// returns the first error the daemon reported.
func streamMessages(r io.Reader, emit func(string)) error {
	dec := json.NewDecoder(r)
	for {
		var msg jsonmessage.JSONMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if msg.Error != nil {
			return msg.Error
		}
		if line := strings.TrimRight(msg.Stream, "\n"); line != "" {
			emit(line)
		} else if msg.Status != "" {
			emit(msg.Status)
		}
	}
}

// decodePushEvents collects a push stream into events. A daemon-reported
// error ends the push.
func decodePushEvents(r io.Reader) ([]domain.PushEvent, error) {
	var events []domain.PushEvent
	dec := json.NewDecoder(r)
	for {
		var msg jsonmessage.JSONMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return events, nil
			}
			return events, err
		}
		if msg.Error != nil {
			return events, msg.Error
		}
		e := domain.PushEvent{ID: msg.ID, Status: msg.Status}
		if msg.Progress != nil {
			e.Progress = msg.Progress.String()
		}
		events = append(events, e)
	}
}

// registryOf returns the registry host of a reference, or "" for Docker Hub
// style references.
func registryOf(ref string) string {
	host, _, found := strings.Cut(ref, "/")
	if !found || (!strings.ContainsAny(host, ".:") && host != "localhost") {
		return ""
	}
	return host
}

func shortID(id string) string {
	return domain.Container{ID: id}.ShortID()
}
