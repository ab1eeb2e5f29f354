// Copyright 2023 Jesus Ruiz. All rights reserved.
// Use of this source code is governed by an Apache-2.0
// license that can be found in the LICENSE file.

// Package sliceedit queues placeholder substitutions on a byte slice and applies
// them in a single pass with rsc.io/edit.
// The original slice is never modified.
package sliceedit

import (
	"bytes"

	"rsc.io/edit"
)

// A Buffer is a queue of substitutions to apply to a given byte slice.
type Buffer struct {
	ed    *edit.Buffer
	src   []byte
	spans []span
}

// span is a half-open range of src already claimed by a queued edit.
type span struct {
	start, end int
}

// NewBuffer returns a new buffer to accumulate substitutions on src.
// The buffer keeps a reference to src, so the caller must not modify it
// until it is done with the Buffer.
func NewBuffer(src []byte) *Buffer {
	return &Buffer{
		ed:  edit.NewBuffer(src),
		src: src,
	}
}

// Occurrences returns the offsets of all non-overlapping instances of item in src.
func Occurrences(src []byte, item string) []int {
	found := []int{}

	if len(item) == 0 {
		return found
	}

	offset := 0
	for {
		i := bytes.Index(src, []byte(item))
		if i == -1 {
			return found
		}
		found = append(found, i+offset)
		src = src[i+len(item):]
		offset = offset + i + len(item)
	}
}

// claim reserves [start, end) unless it overlaps a previous edit.
func (b *Buffer) claim(start, end int) bool {
	for _, s := range b.spans {
		if start < s.end && s.start < end {
			return false
		}
	}
	b.spans = append(b.spans, span{start, end})
	return true
}

// Replace queues the replacement of at most n instances of old by new, all of them if n < 0.
// Instances overlapping an edit already queued are left alone.
// It returns the number of replacements queued.
func (b *Buffer) Replace(old, new string, n int) int {
	count := 0
	for _, hit := range Occurrences(b.src, old) {
		if n >= 0 && count >= n {
			break
		}
		if !b.claim(hit, hit+len(old)) {
			continue
		}
		b.ed.Replace(hit, hit+len(old), new)
		count++
	}
	return count
}

// ReplaceAll queues the replacement of every instance of old by new.
func (b *Buffer) ReplaceAll(old, new string) int {
	return b.Replace(old, new, -1)
}

// Bytes returns a new byte slice with the queued edits applied.
func (b *Buffer) Bytes() []byte {
	return b.ed.Bytes()
}

// String returns the data with the queued edits applied.
func (b *Buffer) String() string {
	return string(b.ed.Bytes())
}

// Substitute replaces every instance of each placeholder in src by its value.
// pairs alternates placeholders and values, as in strings.NewReplacer.
// Placeholders are searched in the original src only, so a value containing
// a placeholder is never expanded again.
func Substitute(src []byte, pairs ...string) []byte {
	if len(pairs)%2 == 1 {
		panic("sliceedit.Substitute: odd argument count")
	}

	b := NewBuffer(src)
	for i := 0; i < len(pairs); i += 2 {
		b.ReplaceAll(pairs[i], pairs[i+1])
	}
	return b.Bytes()
}
