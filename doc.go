/*
go-yolokit implements the framework independent core of a single scale,
anchor based object detector: bounding box geometry and IoU, ground truth
target assignment, loss aggregation, and non-maximum suppression decoding
of raw prediction tensors.

The feature extracting network, optimizer, and checkpoint persistence are
left to the host training framework.  That framework exchanges flat
float32 prediction tensors of shape (anchors, gridH, gridW, 5+classes)
with this library, which is the only contract between the two.

See example code and usage in the example subdirectory.
*/
package yolokit
