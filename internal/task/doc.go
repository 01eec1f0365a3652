// Package task holds the task entity, the in-memory store, and its JSON file format.
//
// The store file (tasks.json by default) is a single document:
//
//	{
//	  "tasks": {
//	    "1": {
//	      "id": 1,
//	      "description": "buy milk",
//	      "status": "Pending",
//	      "created_at": "2024-01-01 09:30:00 UTC",
//	      "updated_at": "2024-01-01 09:30:00 UTC"
//	    }
//	  },
//	  "next_id": 2
//	}
//
// # Identity
//
// Ids are assigned from next_id and are never reused: removing a task leaves the
// counter where it is.
//
// # Task Status Values
//
//   - "Pending": default for new tasks
//   - "Completed": finished
//   - "Canceled": dropped
//
// Any status may move to any other; every change refreshes updated_at.
//
// # File Format
//
// When writing the store, the package uses:
//   - 2-space indentation
//   - Trailing newline
//   - A temporary sibling file renamed over the target
package task
