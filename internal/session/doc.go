// Package session drives the labelling workflow: which folder is current,
// which frame is shown, and what the staged annotation record holds.
//
// A Session is Viewing(folder, frame) until it advances past the last folder,
// then Finished. Committing persists the staged record through the store;
// skipping and explicit folder jumps never save. All state is owned by the
// caller's single control goroutine; nothing here locks.
package session
