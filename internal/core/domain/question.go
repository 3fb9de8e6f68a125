package domain

import "fmt"

// QuestionKind identifies which decision the operator is asked for.
type QuestionKind string

const (
	AskStopContainer   QuestionKind = "stop-container"
	AskBuildImage      QuestionKind = "build-image"
	AskClearContainers QuestionKind = "clear-containers"
)

// Question is a yes/no prompt put to the operator.
type Question struct {
	Kind   QuestionKind
	Reason string // "image" or "port" for stop-container
	Name   string
}

func (q Question) String() string {
	switch q.Kind {
	case AskStopContainer:
		return fmt.Sprintf("Container with %s -> %s <- is running.\nStop the container?", q.Reason, q.Name)
	case AskBuildImage:
		return fmt.Sprintf("There is no image -> %s <-.\nBuild one?", q.Name)
	case AskClearContainers:
		return "For all the images to be removed all containers need to be stopped and removed! Proceed?"
	default:
		return fmt.Sprintf("%s %s?", q.Kind, q.Name)
	}
}
