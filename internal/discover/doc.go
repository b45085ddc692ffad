// Package discover walks a root directory and emits the ordered list of
// labellable folders.
//
// Immediate children of the root are subjects; within each subject the first
// directory (the subject itself included) that directly contains a qualifying
// image file is a terminal labelling unit and its descendants are never
// emitted separately. Folder keys are the stable join keys into the
// annotation store and must never be recomputed differently once written.
package discover
