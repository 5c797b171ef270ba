// Package exiftool provides a thin typed wrapper around the exiftool
// binary for reading embedded creation dates from media files.
//
// Primary entry points:
//   - Extractor: runs exiftool -j against a file and parses CreateDate,
//     falling back to DateCreated
//   - ParseDateTime: positional parser for the YYYY:MM:DD HH:MM:SS layout
//
// A missing or failing exiftool degrades to "no candidate" rather than an
// error; embedded metadata is one fallback source among several.
package exiftool
