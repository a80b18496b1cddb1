// Package plan turns scanned source files into a conflict-free
// source-to-destination mapping.
//
// Planning is single-threaded and touches no files: duplicate groups are
// resolved per policy, every surviving file is named and placed through the
// compiled templates, and the joined path is reserved against one shared
// reservation set so destinations are pairwise unique across the whole plan.
// Naming failures abort the plan before any disk mutation.
package plan
