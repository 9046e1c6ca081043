package seed

// Small corpus of believable snippet bodies keyed by language so seeded
// posts render like real code instead of lorem ipsum.
var snippetTemplates = map[string][]snippetTemplate{
	"go": {
		{
			Filename: "retry.go",
			Code: `func Retry(attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		time.Sleep(delay)
	}
	return err
}`,
			Description: "Tiny retry helper with a fixed backoff.",
		},
		{
			Filename: "chunk.go",
			Code: `func Chunk[T any](items []T, size int) [][]T {
	var chunks [][]T
	for size < len(items) {
		items, chunks = items[size:], append(chunks, items[:size])
	}
	return append(chunks, items)
}`,
			Description: "Generic slice chunking in five lines.",
		},
	},
	"python": {
		{
			Filename: "flatten.py",
			Code: `def flatten(nested):
    for item in nested:
        if isinstance(item, (list, tuple)):
            yield from flatten(item)
        else:
            yield item`,
			Description: "Recursive generator that flattens arbitrarily nested lists.",
		},
		{
			Filename: "timer.py",
			Code: `from contextlib import contextmanager
import time

@contextmanager
def timer(label):
    start = time.perf_counter()
    try:
        yield
    finally:
        print(f"{label}: {time.perf_counter() - start:.3f}s")`,
			Description: "Context manager for quick and dirty profiling.",
		},
	},
	"javascript": {
		{
			Filename: "debounce.js",
			Code: `function debounce(fn, wait) {
  let timeout;
  return function (...args) {
    clearTimeout(timeout);
    timeout = setTimeout(() => fn.apply(this, args), wait);
  };
}`,
			Description: "Classic debounce, no dependencies.",
		},
	},
	"typescript": {
		{
			Filename: "result.ts",
			Code: `type Result<T, E = Error> =
  | { ok: true; value: T }
  | { ok: false; error: E };

function ok<T>(value: T): Result<T> {
  return { ok: true, value };
}

function err<E>(error: E): Result<never, E> {
  return { ok: false, error };
}`,
			Description: "Rust-style Result type for TypeScript.",
		},
	},
	"sql": {
		{
			Filename: "dedupe.sql",
			Code: `DELETE FROM events a
USING events b
WHERE a.id < b.id
  AND a.fingerprint = b.fingerprint;`,
			Description: "Remove duplicate rows keeping the newest.",
		},
	},
	"shell": {
		{
			Filename: "watchdog.sh",
			Code: `#!/usr/bin/env bash
set -euo pipefail

while true; do
  if ! pgrep -f "$1" > /dev/null; then
    echo "restarting $1"
    "$@" &
  fi
  sleep 5
done`,
			Description: "Poor man's process watchdog.",
		},
	},
	"rust": {
		{
			Filename: "dedup.rs",
			Code: `use std::collections::HashSet;

fn dedup_preserve_order<T: Eq + std::hash::Hash + Clone>(items: &[T]) -> Vec<T> {
    let mut seen = HashSet::new();
    items.iter().filter(|x| seen.insert((*x).clone())).cloned().collect()
}`,
			Description: "Order-preserving dedup without sorting.",
		},
	},
}

type snippetTemplate struct {
	Filename    string
	Code        string
	Description string
}

// snippetLanguages lists the languages with templates, in a stable order.
var snippetLanguages = []string{"go", "python", "javascript", "typescript", "sql", "shell", "rust"}

// seedTags are plausible tags attached to seeded posts.
var seedTags = []string{
	"algorithms", "cli", "concurrency", "database", "devops", "generics",
	"oneliner", "performance", "regex", "snippet", "testing", "tooling",
	"utility", "web",
}
