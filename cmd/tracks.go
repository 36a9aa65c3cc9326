package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/rubiojr/triplog/pkg/source"
	"github.com/rubiojr/triplog/pkg/track"
)

// TracksCommand creates the tracks command
func TracksCommand() *cli.Command {
	return &cli.Command{
		Name:  "tracks",
		Usage: "Load every GPS track and summarize it",
		Action: func(ctx context.Context, c *cli.Command) error {
			return listTracks(ctx, c.String("config"))
		},
	}
}

func listTracks(ctx context.Context, configPath string) error {
	env, err := openJournal(configPath)
	if err != nil {
		return err
	}
	defer env.Close()

	snap := source.Load(ctx, env.src)
	if len(snap.Tracks) == 0 {
		fmt.Println(noDataStyle.Render("No tracks found."))
		return nil
	}

	ov := track.NewOverlay(track.NewLoader(env.src), track.DefaultStyle)
	loaded := ov.LoadAll(ctx, snap.Tracks)

	fmt.Println(titleStyle.Render(fmt.Sprintf("%d of %d tracks loaded", loaded, len(snap.Tracks))))
	for _, seg := range ov.Segments() {
		fmt.Println(formatSegment(seg))
	}
	return nil
}

func formatSegment(seg track.SegmentAndMarker) string {
	name := seg.Geometry.Name
	if name == "" {
		name = seg.Geometry.Resource
	}
	meta := fmt.Sprintf("%.2f mi, %d points", seg.Geometry.Miles(), len(seg.Geometry.Coordinates))
	if seg.Start != nil {
		meta += ", trip start"
	}
	return dayStyle.Render("Day "+seg.Day.String()) + routeStyle.Render(name) + "  " + metaStyle.Render(meta)
}
