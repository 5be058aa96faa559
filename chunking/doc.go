// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package chunking splits document text into bounded windows for embedding.
//
// Windows are fixed width and carry no sentence or paragraph awareness. Widths are
// counted in Unicode code points, so a window never splits a multi-byte character,
// and concatenating the chunks of a document in index order reproduces its text.
package chunking
