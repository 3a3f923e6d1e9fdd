// scene-tool inspects and checks scene descriptions without rendering them.
package main

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"whitted/affinetransform"
	"whitted/geometry"
	"whitted/raster"
	"whitted/scene"
	"whitted/scenepack"
	"whitted/xfstack"
)

var cmdRoot = &cobra.Command{
	Use:          "scene-tool",
	SilenceUsage: true,
}

var sceneFile string

func init() {
	cmdRoot.PersistentFlags().StringVar(&sceneFile, "scene", "", "Scene description (YAML)")
}

func loadScene() (*scene.Scene, error) {
	if sceneFile == "" {
		return nil, fmt.Errorf("--scene is required")
	}
	s, err := scenepack.LoadScene(sceneFile)
	if err != nil {
		return nil, fmt.Errorf("while loading scene: %w", err)
	}
	return s, nil
}

var cmdInspect = &cobra.Command{
	Use:   "inspect",
	Short: "Print the node tree, lights and world bounds of a scene",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadScene()
		if err != nil {
			return err
		}

		kindCounts := map[geometry.Kind]int{}
		scene.Walk(s.Root, func(path string, depth int, n scene.Node) {
			indent := strings.Repeat("  ", depth)
			switch n := n.(type) {
			case *scene.Group:
				fmt.Printf("%s%s (group, %d children, %d lights)\n", indent, path, len(n.Members), len(n.GroupLights))
			case *scene.Leaf:
				kindCounts[n.Kind]++
				fmt.Printf("%s%s (%s, %d lights)\n", indent, path, n.Kind, len(n.LeafLights))
			}
		})

		fmt.Println("kinds:")
		kinds := []string{}
		for k := range kindCounts {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Printf("  %s: %d\n", k, kindCounts[geometry.Kind(k)])
		}

		world := xfstack.New(affinetransform.Identity())

		fmt.Println("lights (world frame):")
		for i, li := range s.Lights(world) {
			kind := "positional"
			if li.Light.IsDirectional() {
				kind = "directional"
			}
			fmt.Printf("  %d: %s %v\n", i, kind, li.ViewPosition())
		}

		b := s.Bounds(world)
		if b.IsEmpty() {
			fmt.Println("bounds: empty")
		} else {
			fmt.Printf("bounds: x=[%g, %g] y=[%g, %g] z=[%g, %g]\n", b.X.Lo, b.X.Hi, b.Y.Lo, b.Y.Hi, b.Z.Lo, b.Z.Hi)
		}

		if s.View != nil {
			fmt.Printf("camera: eye=%v center=%v up=%v fov=%v\n", s.View.Eye, s.View.Center, s.View.Up, s.View.FOVDegrees)
		}
		return nil
	},
}

var cmdValidate = &cobra.Command{
	Use:   "validate",
	Short: "Load a scene and report leaves that will not render",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadScene()
		if err != nil {
			return err
		}

		problems := validateScene(s)
		for _, p := range problems {
			fmt.Println(p)
		}
		if len(problems) != 0 {
			return fmt.Errorf("%d problems found", len(problems))
		}
		fmt.Println("ok")
		return nil
	},
}

// validateScene lists every reason s would render wrong or not at all.
func validateScene(s *scene.Scene) []string {
	known := []string{}
	for _, k := range geometry.Kinds() {
		known = append(known, string(k))
	}
	knownList := strings.Join(known, ", ")

	problems := []string{}
	scene.Walk(s.Root, func(path string, depth int, n scene.Node) {
		leaf, ok := n.(*scene.Leaf)
		if !ok {
			return
		}
		if _, ok := geometry.Lookup(leaf.Kind); !ok {
			problems = append(problems, fmt.Sprintf("%s: unknown kind %q (known: %s)", path, leaf.Kind, knownList))
		}
		if err := leaf.Material.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", path, err))
		}
	})

	if s.Root == nil {
		problems = append(problems, "scene has no root node")
	} else if len(s.Lights(xfstack.New(affinetransform.Identity()))) == 0 {
		problems = append(problems, "scene has no lights")
	}
	return problems
}

var cmdRawToPNG = &cobra.Command{
	Use:   "raw-to-png <raw file> <png file>",
	Short: "Convert a raw float raster written by the renderer to PNG",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		im, err := raster.ReadRawFromFile(args[0])
		if err != nil {
			return fmt.Errorf("while reading raw raster: %w", err)
		}

		buf := &bytes.Buffer{}
		if err := raster.EncodePNG(im, buf); err != nil {
			return err
		}
		if err := os.WriteFile(args[1], buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("while writing png: %w", err)
		}
		return nil
	},
}

func main() {
	glog.CopyStandardLogTo("INFO")

	cmdRoot.AddCommand(cmdInspect, cmdValidate, cmdRawToPNG)

	err := cmdRoot.Execute()
	glog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
