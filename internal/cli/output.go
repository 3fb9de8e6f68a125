package cli

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/melih/dockship/internal/core/domain"
)

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}

func renderImages(w io.Writer, images []domain.Image) {
	t := newTable(w, table.Row{"ID", "Tags"})
	for _, img := range images {
		tags := strings.Join(img.RepoTags, ", ")
		if tags == "" {
			tags = "<none>"
		}
		t.AppendRow(table.Row{img.ShortID(), tags})
	}
	t.Render()
}

func renderContainers(w io.Writer, containers []domain.Container) {
	t := newTable(w, table.Row{"ID", "Name", "Image", "State", "Ports"})
	for _, c := range containers {
		t.AppendRow(table.Row{c.ShortID(), c.Name, c.Image, c.State, c.Ports.String()})
	}
	t.Render()
}
