package catalog

import "github.com/roomkit/sceneedit/pkg/core"

// Sizes are width, height, depth in metres.
var defaultPresets = []core.Preset{
	{Name: "Sofa", Category: "seating", Size: core.Size{2.0, 0.85, 0.9}, Color: "#7f6a4f"},
	{Name: "Armchair", Category: "seating", Size: core.Size{0.9, 0.9, 0.85}, Color: "#be2137"},
	{Name: "Chair", Category: "seating", Size: core.Size{0.45, 0.9, 0.5}, Color: "#c19a6b"},
	{Name: "Stool", Category: "seating", Size: core.Size{0.35, 0.65, 0.35}, Color: "#505050"},
	{Name: "Dining Table", Category: "tables", Size: core.Size{1.6, 0.75, 0.9}, Color: "#5d4037"},
	{Name: "Coffee Table", Category: "tables", Size: core.Size{1.1, 0.45, 0.6}, Color: "#c19a6b"},
	{Name: "Desk", Category: "tables", Size: core.Size{1.4, 0.75, 0.7}, Color: "#ffffff"},
	{Name: "Single Bed", Category: "beds", Size: core.Size{0.9, 0.5, 2.0}, Color: "#66bfff"},
	{Name: "Double Bed", Category: "beds", Size: core.Size{1.6, 0.5, 2.1}, Color: "#0079f1"},
	{Name: "Bookshelf", Category: "storage", Size: core.Size{0.8, 1.8, 0.3}, Color: "#5d4037"},
	{Name: "Wardrobe", Category: "storage", Size: core.Size{1.2, 2.0, 0.6}, Color: "#d3b083"},
	{Name: "Dresser", Category: "storage", Size: core.Size{1.0, 0.8, 0.45}, Color: "#c19a6b"},
	{Name: "Rug", Category: "decor", Size: core.Size{2.0, 0.01, 1.4}, Color: "#c87aff"},
	{Name: "Plant", Category: "decor", Size: core.Size{0.4, 1.2, 0.4}, Color: "#009e2f"},
	{Name: "Floor Lamp", Category: "lighting", Size: core.Size{0.35, 1.6, 0.35}, Color: "#ffcb00"},
	{Name: "Table Lamp", Category: "lighting", Size: core.Size{0.25, 0.5, 0.25}, Color: "#fdf900"},
}
