package output

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	// Tree characters
	treeEdge  = "├── "
	treeLast  = "└── "
	treeVert  = "│   "
	treeSpace = "    "

	// Description alignment column
	descriptionColumn = 30
)

// TreeNode represents a directory segment in the module tree.
type TreeNode struct {
	Name        string
	Description string
	IsModule    bool
	Children    []*TreeNode
}

// RenderModuleTree renders module names as a directory tree rooted at
// rootLabel, with descriptions aligned at column 30. Modules maps module
// names (root-relative, separator-joined) to their descriptions; the empty
// name describes the root itself. Intermediate directories that are not
// modules are rendered without a description.
func RenderModuleTree(rootLabel string, modules map[string]string) string {
	if len(modules) == 0 {
		return ""
	}

	root := &TreeNode{
		Name:     rootLabel,
		Children: []*TreeNode{},
	}

	for name, desc := range modules {
		if name == "" {
			root.IsModule = true
			root.Description = desc
			continue
		}

		parts := strings.Split(filepath.ToSlash(name), "/")
		current := root

		for i, part := range parts {
			isLast := i == len(parts)-1

			var child *TreeNode
			for _, c := range current.Children {
				if c.Name == part {
					child = c
					break
				}
			}

			if child == nil {
				child = &TreeNode{
					Name:     part,
					Children: []*TreeNode{},
				}
				current.Children = append(current.Children, child)
			}

			if isLast {
				child.IsModule = true
				child.Description = desc
			}

			current = child
		}
	}

	sortTree(root)

	var sb strings.Builder
	renderNode(&sb, root, "", true, true)
	return sb.String()
}

// sortTree recursively sorts tree nodes alphabetically.
func sortTree(node *TreeNode) {
	if len(node.Children) == 0 {
		return
	}

	sort.Slice(node.Children, func(i, j int) bool {
		return node.Children[i].Name < node.Children[j].Name
	})

	for _, child := range node.Children {
		sortTree(child)
	}
}

// renderNode recursively renders a tree node with proper indentation and styling.
func renderNode(sb *strings.Builder, node *TreeNode, prefix string, isRoot, isLast bool) {
	styles := GetStyles()

	var line string
	if isRoot {
		line = styles.Bold.Render(node.Name + "/")
	} else {
		connector := treeEdge
		if isLast {
			connector = treeLast
		}
		name := node.Name + "/"
		if node.IsModule {
			name = StyleNoun.Render(name)
		}
		line = prefix + connector + name
	}

	if node.Description != "" {
		padding := descriptionColumn - lipgloss.Width(line)
		if padding < 2 {
			padding = 2
		}
		line += strings.Repeat(" ", padding)
		line += styles.Muted.Render(node.Description)
	}

	sb.WriteString(line)
	sb.WriteString("\n")

	for i, child := range node.Children {
		childIsLast := i == len(node.Children)-1

		var childPrefix string
		if !isRoot {
			if isLast {
				childPrefix = prefix + treeSpace
			} else {
				childPrefix = prefix + treeVert
			}
		}

		renderNode(sb, child, childPrefix, false, childIsLast)
	}
}
