// Package domain contains the core entities of the study pipeline: study units,
// flashcards, synthesis results and the documents they are produced from.
// It has no knowledge of storage, transport or the language model.
package domain
