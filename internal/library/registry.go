// Package library holds the static registry of supported visualization
// libraries. The registry is immutable after process start.
package library

import "fmt"

// ID identifies one of the six supported libraries.
type ID string

const (
	G2 ID = "g2" // 2D statistical charts
	G6 ID = "g6" // graph/network analysis
	L7 ID = "l7" // geospatial visualization
	X6 ID = "x6" // diagram editing
	F2 ID = "f2" // mobile charts
	S2 ID = "s2" // tabular/pivot analysis
)

// Default is the fallback library when no explicit choice or detection
// result is available.
const Default = G2

// Descriptor describes one library for prompt assembly and tool schemas.
type Descriptor struct {
	ID          ID
	Name        string
	Description string
	Keywords    string
	CodeStyle   string
}

var registry = map[ID]Descriptor{
	G2: {
		ID:          G2,
		Name:        "G2",
		Description: "Progressive grammar-based 2D charting library for statistical charts: bar, line, area, pie, scatter, heatmap, with animation and interaction support.",
		Keywords:    "chart, bar chart, line chart, area chart, pie chart, scatter plot, heatmap, histogram, axis, legend, tooltip, scale, encode, transform, animation, interaction, facet, annotation, label, theme",
		CodeStyle:   "Declarative options or chained API; chart.options({...}) preferred for complete examples; always call chart.render() once at the end.",
	},
	G6: {
		ID:          G6,
		Name:        "G6",
		Description: "Graph visualization and analysis library for relational data: network diagrams, trees, force-directed layouts, node/edge interaction.",
		Keywords:    "graph, node, edge, combo, layout, force layout, dagre, tree, minimap, behavior, drag, zoom, community detection, shortest path, graph data, plugin, state, palette",
		CodeStyle:   "Single Graph instance with declarative options: data, node/edge style mappers, layout and behaviors arrays; call graph.render() after construction.",
	},
	L7: {
		ID:          L7,
		Name:        "L7",
		Description: "Large-scale geospatial visualization library: point/line/polygon layers on interactive maps, heat layers, choropleths.",
		Keywords:    "map, scene, layer, point layer, line layer, polygon layer, heat layer, choropleth, GeoJSON, projection, marker, popup, zoom, Mapbox, Gaode, tile, coordinate, cluster",
		CodeStyle:   "Create a Scene with a map provider, construct layers with source/shape/color/size chains, add layers to the scene after scene.on('loaded').",
	},
	X6: {
		ID:          X6,
		Name:        "X6",
		Description: "Diagram editing engine for flowcharts, DAG views, ER diagrams and custom node-link editors with rich editing interaction.",
		Keywords:    "diagram, flowchart, DAG, ER diagram, node, edge, port, connector, router, selection, snapline, clipboard, undo, redo, group, swimlane, stencil, validation, export",
		CodeStyle:   "Instantiate Graph on a container, register custom node/edge shapes before use, mutate the model through graph.addNode/addEdge or fromJSON.",
	},
	F2: {
		ID:          F2,
		Name:        "F2",
		Description: "Mobile-first charting library optimized for small screens and touch interaction, embeddable in mini-programs and hybrid apps.",
		Keywords:    "mobile chart, canvas, pixel ratio, touch, gesture, pan, pinch, legend, tooltip, axis, guide, mini program, jsx, component, timeline, progressive rendering",
		CodeStyle:   "JSX-style component composition inside a Canvas element; keep chart components small and pass data via props.",
	},
	S2: {
		ID:          S2,
		Name:        "S2",
		Description: "Multi-dimensional tabular analysis engine: pivot tables, detail tables, drill-down, frozen headers, totals and conditional formatting.",
		Keywords:    "table, pivot table, spreadsheet, cross tab, row header, column header, drill down, totals, sort, filter, frozen, conditional formatting, tree mode, field, dimension, measure, export",
		CodeStyle:   "Build s2DataConfig (fields + data) and s2Options separately; prefer the headless core API unless a React/Vue adapter is asked for.",
	},
}

// order fixes a deterministic iteration order for prompts and heuristics.
var order = []ID{G2, G6, L7, X6, F2, S2}

// IsValid reports whether id names a supported library.
func IsValid(id ID) bool {
	_, ok := registry[id]
	return ok
}

// Get returns the descriptor for id.
func Get(id ID) (Descriptor, error) {
	d, ok := registry[id]
	if !ok {
		return Descriptor{}, fmt.Errorf("unknown library %q", string(id))
	}
	return d, nil
}

// Keywords returns the curated keyword glossary for id, or the empty
// string when none is curated.
func Keywords(id ID) string {
	return registry[id].Keywords
}

// All returns the descriptors of every supported library in fixed order.
func All() []Descriptor {
	out := make([]Descriptor, 0, len(order))
	for _, id := range order {
		out = append(out, registry[id])
	}
	return out
}

// Slugs returns the six library slugs in fixed order, for schema enums.
func Slugs() []string {
	out := make([]string, 0, len(order))
	for _, id := range order {
		out = append(out, string(id))
	}
	return out
}
