// Package memory implements the physical memory and the paged memory manager.
//
// Physical memory is a flat array of cpu.Cell divided into frames of PageSize
// cells. Each process owns a PageTable mapping its logical pages to frames.
// A frame is owned by at most one process, and is zeroed to DATA 0 when it is
// released.
package memory
