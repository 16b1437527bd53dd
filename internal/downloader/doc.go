// Package downloader fetches pad contents from the Etherpad plaintext
// export endpoint. Pads are processed strictly sequentially with a fixed
// delay after each attempted request; failures are recorded and never
// abort the run. Resume mode treats existing non-empty output files as
// completed work.
package downloader
